// Package scan walks one worker's byte range of the input file through a
// memory-mapped view, in bounded-size segments realigned to record
// boundaries, feeding each complete record through the decoder into the
// worker's aggregate tables.
package scan

import (
	"bytes"

	"github.com/go-flume/flume"
	"github.com/go-flume/flume/aggregate"
	"github.com/go-flume/flume/errors"
	"github.com/go-flume/flume/internal/mapped"
	"github.com/go-flume/flume/shard"
)

const separator = '\n'

// A Scanner scans Shards of a single input file. The same Scanner may scan
// several Shards, but each call maps and unmaps the file independently, so
// concurrent workers each own their mapping exclusively.
type Scanner struct {
	path       string
	decoder    flume.Decoder
	maxSegment int
}

// CreateScanner returns a Scanner for the file at path. maxSegmentBytes
// bounds the number of bytes walked per segment; peak buffered data is
// O(maxSegmentBytes) plus the overrun to the next record separator.
func CreateScanner(path string, decoder flume.Decoder, maxSegmentBytes int) (*Scanner, error) {
	if maxSegmentBytes <= 0 {
		return nil, errors.SegmentSizeError{Size: maxSegmentBytes}
	}
	return &Scanner{path: path, decoder: decoder, maxSegment: maxSegmentBytes}, nil
}

// ScanShard scans one Shard, accumulating every record owned by it into p,
// and returns the number of records successfully decoded. A record is owned
// by the Shard containing its first byte: a Shard whose Start cuts a record
// in half skips forward past that record's separator (the previous Shard
// claims it by extending its final segment), and every segment end is
// extended to the next separator so no record is ever split within a Shard.
// Malformed records are dropped silently; only open/map failures are errors.
func (s *Scanner) ScanShard(sh shard.Shard, p *aggregate.Partial) (int64, error) {
	view, err := mapped.Map(s.path)
	if err != nil {
		return 0, err
	}
	defer view.Close()
	data := view.Bytes()

	end := int(sh.End)
	if end > len(data) {
		end = len(data)
	}
	pos := int(sh.Start)
	if pos >= end {
		return 0, nil
	}
	// Realign the effective start. When the byte before Start is not a
	// separator, Start has cut a record in half; its first byte lies in the
	// previous Shard, which owns it, so skip past its separator. When it is
	// a separator, a record begins exactly at Start and is owned here.
	if pos > 0 && data[pos-1] != separator {
		idx := bytes.IndexByte(data[pos:], separator)
		if idx < 0 {
			// no separator before EOF: the whole tail belongs to the
			// previous Shard and this one contributes nothing
			return 0, nil
		}
		pos += idx + 1
	}

	var count int64
	for pos < end {
		segEnd := pos + s.maxSegment
		if segEnd > end {
			segEnd = end
		}
		// extend the segment forward to the next separator, so the record
		// in flight at the nominal edge is completed by this Shard even
		// when it runs past End
		if segEnd < len(data) {
			if idx := bytes.IndexByte(data[segEnd:], separator); idx >= 0 {
				segEnd += idx + 1
			} else {
				segEnd = len(data)
			}
		}
		for pos < segEnd && pos < end {
			var line []byte
			if idx := bytes.IndexByte(data[pos:segEnd], separator); idx >= 0 {
				line = data[pos : pos+idx]
				pos += idx + 1
			} else {
				// final record with no trailing separator
				line = data[pos:segEnd]
				pos = segEnd
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			rec, err := s.decoder.Decode(line)
			if err != nil {
				continue
			}
			p.Accumulate(rec)
			count++
		}
	}
	return count, nil
}
