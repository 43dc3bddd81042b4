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

// Package graphson reads and writes star records as JSON lines, one record
// per line.
package graphson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/weaviate/graphio/usecases/graphio"
)

const Name = "graphson"

const readBufferSize = 64 * 1024

type Codec struct{}

func New() *Codec {
	return &Codec{}
}

func (c *Codec) Name() string {
	return Name
}

// Records frames r into lines. When r is an io.ByteReader (strings.Reader,
// bufio.Reader, ...) nothing past the current line is consumed, so several
// readers may take turns on the same stream. Other readers are buffered.
func (c *Codec) Records(r io.Reader, maxRecordSize int) graphio.RecordReader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReaderSize(r, readBufferSize)
	}
	return &lineReader{r: br, max: maxRecordSize}
}

// Decode parses one record. Numbers are kept as json.Number so integer
// identities survive unchanged.
func (c *Codec) Decode(record []byte) (map[string]any, error) {
	var tree map[string]any
	if err := c.Unmarshal(record, &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("record is null")
	}
	return tree, nil
}

func (c *Codec) Unmarshal(record []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(record))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode json record")
	}
	if dec.More() {
		return fmt.Errorf("trailing data after json record")
	}
	return nil
}

func (c *Codec) Encode(w io.Writer, tree map[string]any) error {
	b, err := json.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "encode json record")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

type lineReader struct {
	r   io.ByteReader
	max int
}

// Next skips blank lines. A last line without a newline is still a record.
func (l *lineReader) Next() ([]byte, error) {
	for {
		line, err := l.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return trimmed, nil
		}
		if err != nil {
			return nil, io.EOF
		}
	}
}

// readLine reads up to and including the next newline, one byte at a time,
// and fails as soon as the line outgrows the record size limit.
func (l *lineReader) readLine() ([]byte, error) {
	var line []byte
	for {
		b, err := l.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return line, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "read json line")
		}
		if b == '\n' {
			return line, nil
		}
		if len(line) >= l.max {
			return nil, errors.Wrapf(bufio.ErrTooLong, "json line exceeds %d bytes", l.max)
		}
		line = append(line, b)
	}
}
