package flume

// A Record is the decoded form of one line of the input file. Either the
// bucket side or the entity side may be absent independently - a Record
// missing the fields required for one table is excluded from that table
// only, not from the run.
type Record struct {
	BucketKey   string  // discretized time-window key, e.g. an hour-truncated timestamp
	EntityKey   string  // stable identifier for the entity which produced the record
	EntityLabel string  // display label observed alongside EntityKey
	Metric      float64 // the value being aggregated
	HasBucket   bool    // true iff BucketKey and Metric were both present
	HasEntity   bool    // true iff EntityKey, EntityLabel and Metric were all present
}

// A Decoder turns one raw line into a Record. Decoders must be pure and
// side-effect-free. Any returned error is treated by the scanner as "drop
// this record" - it is never fatal.
type Decoder interface {
	Decode(line []byte) (Record, error)
}
