package aggregate

import (
	"github.com/go-flume/flume"
	"github.com/go-flume/flume/topk"
)

// TopBuckets selects the k extremal bucket sums in a given direction
func TopBuckets(t flume.BucketTable, k int, dir topk.Direction) []topk.Entry {
	s := topk.CreateSelector(k, dir)
	for key, sum := range t {
		s.Add(topk.Entry{Key: key, Value: sum})
	}
	return s.Results()
}

// TopEntities selects the k extremal entity sums in a given direction
func TopEntities(t flume.EntityTable, k int, dir topk.Direction) []topk.Entry {
	s := topk.CreateSelector(k, dir)
	for key, entry := range t {
		s.Add(topk.Entry{Key: key, Label: entry.Label, Value: entry.Sum})
	}
	return s.Results()
}
