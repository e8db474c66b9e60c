// Package aggregate accumulates decoded records into keyed running-sum
// tables, and merges per-worker partial tables into global ones.
package aggregate

import (
	"github.com/go-flume/flume"
)

// A Partial holds one worker's running aggregates: a bucket table, an entity
// table and the count of records accumulated. A Partial is owned by a single
// scanning goroutine and is not safe for concurrent writers.
type Partial struct {
	buckets  flume.BucketTable
	entities flume.EntityTable
	records  int64
}

// CreatePartial returns a new, empty Partial
func CreatePartial() *Partial {
	return &Partial{
		buckets:  make(flume.BucketTable),
		entities: make(flume.EntityTable),
	}
}

// AddToBucket adds value to the running sum for a time-bucket key
func (p *Partial) AddToBucket(key string, value float64) {
	p.buckets[key] += value
}

// AddToEntity adds value to the running sum for an entity key, retaining the
// most recently supplied label
func (p *Partial) AddToEntity(key string, label string, value float64) {
	entry := p.entities[key]
	entry.Label = label
	entry.Sum += value
	p.entities[key] = entry
}

// Accumulate routes a decoded Record into whichever tables its fields allow,
// and counts it. A Record missing the fields for one table still contributes
// to the other.
func (p *Partial) Accumulate(rec flume.Record) {
	if rec.HasBucket {
		p.AddToBucket(rec.BucketKey, rec.Metric)
	}
	if rec.HasEntity {
		p.AddToEntity(rec.EntityKey, rec.EntityLabel, rec.Metric)
	}
	p.records++
}

// Merge merges another Partial into this one: key-wise sums for both tables,
// plus record counts. The merge is commutative and associative, so pairwise
// and N-way merging of worker partials agree (up to floating-point
// summation-order rounding). For entity keys present on both sides the
// existing label is retained.
func (p *Partial) Merge(o *Partial) {
	for key, sum := range o.buckets {
		p.buckets[key] += sum
	}
	for key, in := range o.entities {
		entry, ok := p.entities[key]
		if !ok {
			entry.Label = in.Label
		}
		entry.Sum += in.Sum
		p.entities[key] = entry
	}
	p.records += o.records
}

// Buckets returns the bucket table. Callers must not mutate it.
func (p *Partial) Buckets() flume.BucketTable {
	return p.buckets
}

// Entities returns the entity table. Callers must not mutate it.
func (p *Partial) Entities() flume.EntityTable {
	return p.entities
}

// Records returns the number of records accumulated
func (p *Partial) Records() int64 {
	return p.records
}
