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

package graphio

import "io"

// Codec turns raw records into keyed trees and back. Decoded trees only
// contain map[string]any, []any and scalars.
type Codec interface {
	Name() string
	// Records splits a stream into raw records. Records larger than
	// maxRecordSize bytes fail the stream.
	Records(r io.Reader, maxRecordSize int) RecordReader
	Decode(record []byte) (map[string]any, error)
	// Unmarshal decodes a record into an arbitrary Go value.
	Unmarshal(record []byte, v any) error
	Encode(w io.Writer, tree map[string]any) error
}

// RecordReader yields raw records. Next returns io.EOF after the last
// record. The returned slice is only valid until the next call.
type RecordReader interface {
	Next() ([]byte, error)
}
