package errors

import (
	"fmt"
)

// WorkerCountError occurs when a shard plan or worker group is requested for
// fewer than one worker
type WorkerCountError struct{ Num int }

// Error returns a textual representation of this WorkerCountError
func (e WorkerCountError) Error() string {
	return fmt.Sprintf("Worker count must be at least 1 (was %d)", e.Num)
}

// SegmentSizeError occurs when a scanner is configured with a non-positive
// segment byte cap
type SegmentSizeError struct{ Size int }

// Error returns a textual representation of this SegmentSizeError
func (e SegmentSizeError) Error() string {
	return fmt.Sprintf("Segment byte cap must be positive (was %d)", e.Size)
}

// RankError occurs when a rank falls outside the range of a worker group
type RankError struct {
	Rank int
	Size int
}

// Error returns a textual representation of this RankError
func (e RankError) Error() string {
	return fmt.Sprintf("Rank %d is not valid for a group of size %d", e.Rank, e.Size)
}

// MalformedRecordError occurs when a line cannot be decoded as a record
type MalformedRecordError struct{}

// Error returns a textual representation of this MalformedRecordError
func (e MalformedRecordError) Error() string {
	return "Record is not valid JSON"
}

// GatherSizeError occurs when a gather at the merge point yields a number of
// contributions other than the group size
type GatherSizeError struct {
	Expected int
	Actual   int
}

// Error returns a textual representation of this GatherSizeError
func (e GatherSizeError) Error() string {
	return fmt.Sprintf("Gather produced %d contributions for a group of size %d", e.Actual, e.Expected)
}

// MissingDataPathError occurs when a node is started without an input file
type MissingDataPathError struct{}

// Error returns a textual representation of this MissingDataPathError
func (e MissingDataPathError) Error() string {
	return "NodeOptions.DataPath must be the path to the input file"
}
