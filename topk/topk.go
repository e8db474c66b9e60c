// Package topk selects the K extremal entries of a keyed table by value,
// without sorting the whole table.
package topk

import (
	"container/heap"
	"sort"
)

// Direction indicates which end of the value ordering a Selector keeps
type Direction int

const (
	// Largest keeps the K greatest values, with results sorted descending
	Largest Direction = iota
	// Smallest keeps the K least values, with results sorted ascending
	Smallest
)

// An Entry is one (key, value) candidate, with an optional display label
type Entry struct {
	Key   string
	Label string
	Value float64
}

// A Selector retains the K extremal Entries offered to it, in O(log K) per
// candidate. Ties may be kept or evicted in any order. A Selector with zero
// capacity keeps nothing.
type Selector struct {
	k   int
	dir Direction
	h   entryHeap
}

// CreateSelector returns a Selector with capacity k in a given Direction
func CreateSelector(k int, dir Direction) *Selector {
	if k < 0 {
		k = 0
	}
	return &Selector{k: k, dir: dir, h: entryHeap{dir: dir, items: make([]Entry, 0, k)}}
}

// Add offers a candidate Entry to this Selector. If the Selector is at
// capacity, the current worst of the kept K is evicted iff the candidate is
// strictly better; otherwise the candidate is discarded.
func (s *Selector) Add(e Entry) {
	if s.k == 0 {
		return
	}
	if s.h.Len() < s.k {
		heap.Push(&s.h, e)
		return
	}
	if s.h.beats(e, s.h.items[0]) {
		s.h.items[0] = e
		heap.Fix(&s.h, 0)
	}
}

// Results returns the kept Entries in final order: descending by value for
// Largest, ascending by value for Smallest. The Selector may continue to be
// used afterwards.
func (s *Selector) Results() []Entry {
	out := make([]Entry, len(s.h.items))
	copy(out, s.h.items)
	sort.Slice(out, func(i, j int) bool {
		if s.dir == Largest {
			return out[i].Value > out[j].Value
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// entryHeap keeps the worst retained Entry at the root, so that the best
// candidate to evict is always immediately available: a min-heap when
// selecting Largest, a max-heap when selecting Smallest.
type entryHeap struct {
	dir   Direction
	items []Entry
}

// beats returns true iff a should be retained in preference to b
func (h *entryHeap) beats(a Entry, b Entry) bool {
	if h.dir == Largest {
		return a.Value > b.Value
	}
	return a.Value < b.Value
}

func (h *entryHeap) Len() int { return len(h.items) }

func (h *entryHeap) Less(i, j int) bool {
	if h.dir == Largest {
		return h.items[i].Value < h.items[j].Value
	}
	return h.items[i].Value > h.items[j].Value
}

func (h *entryHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *entryHeap) Push(x interface{}) {
	h.items = append(h.items, x.(Entry))
}

func (h *entryHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
