// Package shard computes the contiguous byte ranges of an input file
// assigned to each worker of a group.
package shard

import (
	"fmt"

	"github.com/go-flume/flume/errors"
)

// A Shard is a half-open byte range [Start, End) of the input file, assigned
// to one worker. Shards for a given worker count cover the file exactly,
// with no gaps and no overlaps.
type Shard struct {
	Worker int
	Start  int64
	End    int64
}

// Len returns the number of bytes covered by this Shard
func (s Shard) Len() int64 {
	return s.End - s.Start
}

// Empty returns true iff this Shard covers no bytes
func (s Shard) Empty() bool {
	return s.End <= s.Start
}

// ToString returns a string representation of this Shard
func (s Shard) ToString() string {
	return fmt.Sprintf("Shard %d: bytes [%d, %d)", s.Worker, s.Start, s.End)
}

// Plan divides a file of fileSize bytes into one Shard per worker. Each
// worker receives fileSize / numWorkers bytes, except the last, which
// absorbs the remainder. A zero-length file yields all-empty Shards.
func Plan(fileSize int64, numWorkers int) ([]Shard, error) {
	if numWorkers < 1 {
		return nil, errors.WorkerCountError{Num: numWorkers}
	}
	chunk := fileSize / int64(numWorkers)
	shards := make([]Shard, numWorkers)
	for i := range shards {
		shards[i] = Shard{
			Worker: i,
			Start:  int64(i) * chunk,
			End:    int64(i+1) * chunk,
		}
	}
	// last worker absorbs fileSize % numWorkers
	shards[numWorkers-1].End = fileSize
	return shards, nil
}
