package aggregate

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/go-flume/flume"
	"github.com/pierrec/lz4/v4"
)

// partialWire is the gob surface of a Partial
type partialWire struct {
	Buckets  flume.BucketTable
	Entities flume.EntityTable
	Records  int64
}

// ToBytes serializes this Partial for transfer to the merge point. The gob
// encoding is lz4-framed, since bucket and entity keys compress well.
func (p *Partial) ToBytes() ([]byte, error) {
	var buff bytes.Buffer
	zw := lz4.NewWriter(&buff)
	e := gob.NewEncoder(zw)
	err := e.Encode(partialWire{Buckets: p.buckets, Entities: p.entities, Records: p.records})
	if err != nil {
		return nil, fmt.Errorf("unable to encode partial: %w", err)
	}
	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("unable to compress partial: %w", err)
	}
	return buff.Bytes(), nil
}

// PartialFromBytes produces a Partial from its serialized form
func PartialFromBytes(buff []byte) (*Partial, error) {
	var wire partialWire
	zr := lz4.NewReader(bytes.NewReader(buff))
	d := gob.NewDecoder(zr)
	if err := d.Decode(&wire); err != nil {
		return nil, fmt.Errorf("unable to decode partial: %w", err)
	}
	p := CreatePartial()
	if wire.Buckets != nil {
		p.buckets = wire.Buckets
	}
	if wire.Entities != nil {
		p.entities = wire.Entities
	}
	p.records = wire.Records
	return p, nil
}
