// Package cluster owns the worker group lifecycle: it assigns shard
// partitions, runs each worker's scan, synchronizes completion, transfers
// partial tables to the merge point, reduces them into global tables and
// computes the bounded top-K reports.
package cluster

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/go-flume/flume"
	"github.com/go-flume/flume/aggregate"
	"github.com/go-flume/flume/decode"
	"github.com/go-flume/flume/errors"
	"github.com/go-flume/flume/logging"
	"github.com/go-flume/flume/scan"
	"github.com/go-flume/flume/shard"
	"github.com/go-flume/flume/topk"
	"github.com/go-flume/flume/transport"
)

// NodeOptions are options for a Node, configuring one member of a run
type NodeOptions struct {
	DataPath        string          // [REQUIRED] path to the newline-delimited input file
	NumWorkers      int             // group size, used when the run drives its own local group
	MaxSegmentBytes int             // cap on bytes walked per scan segment. Defaults to 100MiB.
	TopK            int             // number of extremal entries reported per table. Defaults to 5.
	MergePoint      int             // rank which merges partials and computes results. Defaults to 0.
	Decoder         flume.Decoder   // record decoder. Defaults to the NDJSON decoder with its default paths.
	Log             *logging.Logger // defaults to a stderr logger

	// scanSem, when set, bounds how many workers of a local group walk
	// their mapped shard at once
	scanSem *semaphore.Weighted
}

func ensureDefaultNodeOptionsValues(opts *NodeOptions) error {
	if len(opts.DataPath) == 0 {
		return errors.MissingDataPathError{}
	}
	if opts.MaxSegmentBytes < 0 {
		return errors.SegmentSizeError{Size: opts.MaxSegmentBytes}
	}
	if opts.MaxSegmentBytes == 0 {
		opts.MaxSegmentBytes = 100 * 1024 * 1024
	}
	if opts.TopK == 0 {
		opts.TopK = 5
	}
	if opts.Decoder == nil {
		opts.Decoder = decode.CreateDecoder(nil)
	}
	if opts.Log == nil {
		opts.Log = logging.CreateLogger("flume", logging.InfoLevel)
	}
	return nil
}

// RunStatistics records how long each phase of a run took. Scan times are
// per-worker; gather and merge times are observed at the merge point only.
type RunStatistics struct {
	ScanTime   time.Duration
	GatherTime time.Duration
	MergeTime  time.Duration
	TotalTime  time.Duration
}

// A Result holds the global aggregates of a completed run. It is produced
// only at the merge point and is not mutated after hand-off.
type Result struct {
	TopBuckets     []topk.Entry // largest bucket sums, descending
	BottomBuckets  []topk.Entry // smallest bucket sums, ascending
	TopEntities    []topk.Entry // largest entity sums, descending
	BottomEntities []topk.Entry // smallest entity sums, ascending

	Buckets  flume.BucketTable // merged bucket table
	Entities flume.EntityTable // merged entity table
	Records  int64             // total records decoded across all workers

	NumWorkers int
	Stats      RunStatistics
}

// A Node is one member of a run: it scans its own shard, and, if it is the
// merge point, reduces every member's partial tables into the Result.
type Node struct {
	id    string
	group transport.Group
	opts  *NodeOptions
	log   *logging.Logger
}

// CreateNode returns a Node participating in a run over an established
// worker group
func CreateNode(group transport.Group, opts *NodeOptions) (*Node, error) {
	if err := ensureDefaultNodeOptionsValues(opts); err != nil {
		return nil, err
	}
	if opts.MergePoint < 0 || opts.MergePoint >= group.Size() {
		return nil, errors.RankError{Rank: opts.MergePoint, Size: group.Size()}
	}
	id := uuid.NewString()
	return &Node{
		id:    id,
		group: group,
		opts:  opts,
		log:   logging.CreateLogger(fmt.Sprintf("worker %d (%s)", group.Rank(), id[:8]), logging.InfoLevel),
	}, nil
}

// ID returns the unique identity of this Node
func (n *Node) ID() string {
	return n.id
}

// Run executes this member's share of the run to completion. Every member
// scans concurrently and blocks on the group barrier; only the merge point
// proceeds to merging and top-K selection and returns a non-nil Result.
// Other members return (nil, nil) once their partial has been transferred.
// Any environment or transport failure aborts with an error; malformed
// records never do.
func (n *Node) Run(ctx context.Context) (*Result, error) {
	var stats RunStatistics
	start := time.Now()

	info, err := os.Stat(n.opts.DataPath)
	if err != nil {
		return nil, fmt.Errorf("unable to stat input file %s: %w", n.opts.DataPath, err)
	}
	shards, err := shard.Plan(info.Size(), n.group.Size())
	if err != nil {
		return nil, err
	}
	sh := shards[n.group.Rank()]

	scanner, err := scan.CreateScanner(n.opts.DataPath, n.opts.Decoder, n.opts.MaxSegmentBytes)
	if err != nil {
		return nil, err
	}
	partial := aggregate.CreatePartial()
	scanStart := time.Now()
	if n.opts.scanSem != nil {
		if err = n.opts.scanSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	count, err := scanner.ScanShard(sh, partial)
	if n.opts.scanSem != nil {
		n.opts.scanSem.Release(1)
	}
	if err != nil {
		return nil, err
	}
	stats.ScanTime = time.Since(scanStart)
	n.log.Infof("scanned %d records from %s in %.2fs", count, sh.ToString(), stats.ScanTime.Seconds())

	if err = n.group.Barrier(ctx); err != nil {
		return nil, fmt.Errorf("barrier failed on worker %d: %w", n.group.Rank(), err)
	}

	payload, err := partial.ToBytes()
	if err != nil {
		return nil, err
	}
	gatherStart := time.Now()
	gathered, err := n.group.Gather(ctx, n.opts.MergePoint, payload)
	if err != nil {
		return nil, fmt.Errorf("gather failed on worker %d: %w", n.group.Rank(), err)
	}
	if n.group.Rank() != n.opts.MergePoint {
		return nil, nil
	}
	if len(gathered) != n.group.Size() {
		return nil, errors.GatherSizeError{Expected: n.group.Size(), Actual: len(gathered)}
	}
	stats.GatherTime = time.Since(gatherStart)

	mergeStart := time.Now()
	merged := aggregate.CreatePartial()
	for rank, buff := range gathered {
		p, err := aggregate.PartialFromBytes(buff)
		if err != nil {
			return nil, fmt.Errorf("unable to decode partial from worker %d: %w", rank, err)
		}
		merged.Merge(p)
	}
	stats.MergeTime = time.Since(mergeStart)
	n.log.Infof("merged %d partials (%d records) in %.2fs", len(gathered), merged.Records(), stats.MergeTime.Seconds())

	result := &Result{
		TopBuckets:     aggregate.TopBuckets(merged.Buckets(), n.opts.TopK, topk.Largest),
		BottomBuckets:  aggregate.TopBuckets(merged.Buckets(), n.opts.TopK, topk.Smallest),
		TopEntities:    aggregate.TopEntities(merged.Entities(), n.opts.TopK, topk.Largest),
		BottomEntities: aggregate.TopEntities(merged.Entities(), n.opts.TopK, topk.Smallest),
		Buckets:        merged.Buckets(),
		Entities:       merged.Entities(),
		Records:        merged.Records(),
		NumWorkers:     n.group.Size(),
	}
	stats.TotalTime = time.Since(start)
	result.Stats = stats
	return result, nil
}
