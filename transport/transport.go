// Package transport defines the collective primitives a worker group needs
// from its execution environment: rank identity, a group-wide barrier, and a
// gather of serialized payloads to a single member. The engine is agnostic
// to the substrate - subpackages provide an in-process channel mesh for
// single-machine runs and a message-broker implementation for multi-process
// deployments.
package transport

import (
	"context"
)

// A Group is one member's handle on a worker group of fixed size. Every
// member observes the same Size and a distinct Rank in [0, Size). A Group
// carries no timeout semantics of its own: a stuck member stalls the whole
// group until the supplied Context is cancelled.
type Group interface {
	// Rank returns this member's identity within the group
	Rank() int
	// Size returns the number of members in the group
	Size() int
	// Barrier blocks until every member of the group has reached it
	Barrier(ctx context.Context) error
	// Gather transfers every member's payload to the member with the given
	// rank. On that member it returns all payloads indexed by rank; on every
	// other member it returns nil once the local payload has been handed
	// off.
	Gather(ctx context.Context, root int, payload []byte) ([][]byte, error)
	// Close releases the member's resources
	Close() error
}
