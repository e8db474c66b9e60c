// Package decode provides the NDJSON record decoder. Field locations are
// configurable gjson paths, so the same engine can aggregate any
// line-delimited JSON feed which carries a timestamp, an entity identity and
// a numeric metric.
package decode

import (
	"time"

	"github.com/go-flume/flume"
	"github.com/go-flume/flume/errors"
	"github.com/tidwall/gjson"
)

// Conf configures a Decoder. Paths are gjson paths into each line.
type Conf struct {
	TimePath        string // path to an RFC3339 timestamp. Defaults to "created_at".
	EntityIDPath    string // path to the entity identifier. Defaults to "account.id".
	EntityLabelPath string // path to the entity display label. Defaults to "account.username".
	MetricPath      string // path to the numeric metric. Defaults to "sentiment".
	BucketFormat    string // time layout producing the bucket key. Defaults to hour truncation, "2006-01-02 15".
}

// A Decoder extracts Records from lines of JSON
type Decoder struct {
	conf *Conf
}

// CreateDecoder returns a new Decoder, defaulting any Conf values which were
// not supplied
func CreateDecoder(conf *Conf) *Decoder {
	if conf == nil {
		conf = &Conf{}
	}
	if len(conf.TimePath) == 0 {
		conf.TimePath = "created_at"
	}
	if len(conf.EntityIDPath) == 0 {
		conf.EntityIDPath = "account.id"
	}
	if len(conf.EntityLabelPath) == 0 {
		conf.EntityLabelPath = "account.username"
	}
	if len(conf.MetricPath) == 0 {
		conf.MetricPath = "sentiment"
	}
	if len(conf.BucketFormat) == 0 {
		conf.BucketFormat = "2006-01-02 15"
	}
	return &Decoder{conf: conf}
}

// Decode extracts a Record from one line. Lines which are not valid JSON
// yield a MalformedRecordError. Valid JSON missing fields yields a Record
// excluded from the table(s) those fields serve, which is not an error.
func (d *Decoder) Decode(line []byte) (flume.Record, error) {
	if !gjson.ValidBytes(line) {
		return flume.Record{}, errors.MalformedRecordError{}
	}
	doc := gjson.ParseBytes(line)
	rec := flume.Record{}

	metric := doc.Get(d.conf.MetricPath)
	hasMetric := metric.Type == gjson.Number
	if hasMetric {
		rec.Metric = metric.Float()
	}

	if ts := doc.Get(d.conf.TimePath); hasMetric && ts.Type == gjson.String {
		// the bucket key keeps the timestamp's own offset, rather than
		// normalizing to UTC
		if parsed, err := time.Parse(time.RFC3339, ts.String()); err == nil {
			rec.BucketKey = parsed.Format(d.conf.BucketFormat)
			rec.HasBucket = true
		}
	}

	id := doc.Get(d.conf.EntityIDPath)
	label := doc.Get(d.conf.EntityLabelPath)
	if hasMetric && id.Exists() && label.Type == gjson.String {
		rec.EntityKey = id.String()
		rec.EntityLabel = label.String()
		rec.HasEntity = true
	}
	return rec, nil
}
