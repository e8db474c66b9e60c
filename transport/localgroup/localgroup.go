// Package localgroup implements a worker group as goroutines within one
// process, synchronized over channels.
package localgroup

import (
	"context"
	"sync"

	"github.com/go-flume/flume/errors"
	"github.com/go-flume/flume/transport"
)

// contribution is one member's gather payload
type contribution struct {
	rank    int
	payload []byte
}

// shared is the state common to all members of a local group
type shared struct {
	size     int
	mu       sync.Mutex
	arrived  int
	release  chan struct{}
	contribs chan contribution
}

// member is one rank's handle on the group
type member struct {
	rank  int
	group *shared
}

// CreateGroup returns one Group handle per member of an in-process group of
// the given size. Each handle must be used by exactly one goroutine.
func CreateGroup(size int) ([]transport.Group, error) {
	if size < 1 {
		return nil, errors.WorkerCountError{Num: size}
	}
	g := &shared{
		size:     size,
		release:  make(chan struct{}),
		contribs: make(chan contribution, size),
	}
	members := make([]transport.Group, size)
	for i := range members {
		members[i] = &member{rank: i, group: g}
	}
	return members, nil
}

// Rank returns this member's identity within the group
func (m *member) Rank() int {
	return m.rank
}

// Size returns the number of members in the group
func (m *member) Size() int {
	return m.group.size
}

// Barrier blocks until every member of the group has reached it. The
// barrier is reusable across phases.
func (m *member) Barrier(ctx context.Context) error {
	g := m.group
	g.mu.Lock()
	release := g.release
	g.arrived++
	if g.arrived == g.size {
		// last to arrive: open this generation and arm the next
		g.arrived = 0
		g.release = make(chan struct{})
		close(release)
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gather transfers every member's payload to the root member
func (m *member) Gather(ctx context.Context, root int, payload []byte) ([][]byte, error) {
	g := m.group
	if root < 0 || root >= g.size {
		return nil, errors.RankError{Rank: root, Size: g.size}
	}
	select {
	case g.contribs <- contribution{rank: m.rank, payload: payload}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if m.rank != root {
		return nil, nil
	}
	gathered := make([][]byte, g.size)
	for i := 0; i < g.size; i++ {
		select {
		case c := <-g.contribs:
			gathered[c.rank] = c.payload
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return gathered, nil
}

// Close is a no-op for local groups
func (m *member) Close() error {
	return nil
}
