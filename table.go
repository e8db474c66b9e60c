package flume

// A BucketTable maps time-bucket keys to cumulative metric sums. Keys are
// unique and iteration order is irrelevant.
type BucketTable map[string]float64

// An EntityEntry is one EntityTable value: a label observed for the entity
// and the cumulative metric sum. The label is not part of the sum - it is
// simply some label seen for that key.
type EntityEntry struct {
	Label string
	Sum   float64
}

// An EntityTable maps entity keys to their entry. Keys are unique and
// iteration order is irrelevant.
type EntityTable map[string]EntityEntry
