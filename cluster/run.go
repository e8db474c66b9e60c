package cluster

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/go-flume/flume/transport/localgroup"
)

// RunLocal executes a complete run within this process, with
// opts.NumWorkers workers as goroutines over a channel-based group. It
// returns the merge point's Result. maxConcurrentScans, when positive,
// bounds how many workers walk their mapped shard at once; every worker
// still joins the barrier, so the bound cannot deadlock the group.
func RunLocal(ctx context.Context, opts *NodeOptions, maxConcurrentScans int) (*Result, error) {
	if err := ensureDefaultNodeOptionsValues(opts); err != nil {
		return nil, err
	}
	members, err := localgroup.CreateGroup(opts.NumWorkers)
	if err != nil {
		return nil, err
	}
	if maxConcurrentScans > 0 {
		opts.scanSem = semaphore.NewWeighted(int64(maxConcurrentScans))
	}

	var result *Result
	var resultLock sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for _, member := range members {
		node, err := CreateNode(member, opts)
		if err != nil {
			return nil, err
		}
		eg.Go(func() error {
			res, err := node.Run(egCtx)
			if err != nil {
				return err
			}
			if res != nil {
				resultLock.Lock()
				result = res
				resultLock.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
