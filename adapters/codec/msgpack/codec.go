//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package msgpack reads and writes star records as a stream of concatenated
// MessagePack maps.
package msgpack

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/weaviate/graphio/usecases/graphio"
)

const Name = "msgpack"

type Codec struct{}

func New() *Codec {
	return &Codec{}
}

func (c *Codec) Name() string {
	return Name
}

// Records frames r into msgpack values. The record size limit is enforced
// while reading, a record never pulls more than the limit from r.
func (c *Codec) Records(r io.Reader, maxRecordSize int) graphio.RecordReader {
	src, ok := r.(byteScanReader)
	if !ok {
		src = bufio.NewReader(r)
	}
	budget := &budgetReader{src: src}
	return &rawReader{dec: msgpack.NewDecoder(budget), budget: budget, max: maxRecordSize}
}

// Decode parses one record. Loose decoding maps every integer to int64 or
// uint64 and every float to float64.
func (c *Codec) Decode(record []byte) (map[string]any, error) {
	dec := newDecoder(record)
	tree, err := dec.DecodeMap()
	if err != nil {
		return nil, errors.Wrap(err, "decode msgpack record")
	}
	if tree == nil {
		return nil, fmt.Errorf("record is nil")
	}
	if err := expectEnd(dec); err != nil {
		return nil, err
	}
	return tree, nil
}

func (c *Codec) Unmarshal(record []byte, v any) error {
	dec := newDecoder(record)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode msgpack record")
	}
	return expectEnd(dec)
}

func (c *Codec) Encode(w io.Writer, tree map[string]any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	return errors.Wrap(enc.Encode(tree), "encode msgpack record")
}

func newDecoder(record []byte) *msgpack.Decoder {
	dec := msgpack.NewDecoder(bytes.NewReader(record))
	dec.UseLooseInterfaceDecoding(true)
	return dec
}

func expectEnd(dec *msgpack.Decoder) error {
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing data after msgpack record")
	}
	return nil
}

var errRecordTooLarge = errors.New("msgpack record too large")

type byteScanReader interface {
	io.Reader
	io.ByteScanner
}

// budgetReader fails reads once the current record has used up its byte
// budget. It forwards io.ByteScanner so the decoder adds no read-ahead.
type budgetReader struct {
	src  byteScanReader
	left int
}

func (b *budgetReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.left <= 0 {
		return 0, errRecordTooLarge
	}
	if len(p) > b.left {
		p = p[:b.left]
	}
	n, err := b.src.Read(p)
	b.left -= n
	return n, err
}

func (b *budgetReader) ReadByte() (byte, error) {
	if b.left <= 0 {
		return 0, errRecordTooLarge
	}
	c, err := b.src.ReadByte()
	if err == nil {
		b.left--
	}
	return c, err
}

func (b *budgetReader) UnreadByte() error {
	err := b.src.UnreadByte()
	if err == nil {
		b.left++
	}
	return err
}

type rawReader struct {
	dec    *msgpack.Decoder
	budget *budgetReader
	max    int
}

func (r *rawReader) Next() ([]byte, error) {
	r.budget.left = r.max
	if r.max <= 0 {
		r.budget.left = math.MaxInt
	}

	if _, err := r.dec.PeekCode(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "read msgpack record")
	}
	raw, err := r.dec.DecodeRaw()
	if err != nil {
		if errors.Is(err, errRecordTooLarge) {
			return nil, fmt.Errorf("msgpack record exceeds limit of %d bytes", r.max)
		}
		if errors.Is(err, io.EOF) {
			// the stream ended inside a record
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "read msgpack record")
	}
	return raw, nil
}
