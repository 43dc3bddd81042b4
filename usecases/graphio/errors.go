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

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrDecode          = errors.New("record decode failed")
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDuplicateVertex is returned by a bulk load when two records carry
	// the same vertex identity.
	ErrDuplicateVertex = errors.New("duplicate vertex identity in stream")
	// ErrUnknownVertex is returned when an edge references a vertex identity
	// that was never loaded.
	ErrUnknownVertex = errors.New("unknown vertex identity")
)

// DecodeError wraps a codec failure on raw input.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// MalformedRecordError reports a required field that is absent or has the
// wrong shape on an otherwise decodable record.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%v: field %q %s", ErrMalformedRecord, e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func missingField(field string) error {
	return &MalformedRecordError{Field: field, Reason: "is missing"}
}

func invalidField(field, format string, args ...any) error {
	return &MalformedRecordError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Phase names the step of a bulk load an error occurred in.
type Phase string

const (
	PhaseVertices Phase = "vertices"
	PhaseEdges    Phase = "edges"
	PhaseCommit   Phase = "commit"
)

// LoadError is returned by ReadGraph. Record is the 1-based position of the
// record that failed, for the edge phase the record that declared the edge.
// Every failed commit carries PhaseCommit, with the record whose mutation
// triggered the batch commit, or the last record for the final commit.
type LoadError struct {
	Phase    Phase
	Record   int
	Fragment string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("load graph: %s phase: record %d: %v", e.Phase, e.Record, e.Err)
	}
	return fmt.Sprintf("load graph: %s phase: record %d: %v (at %s)",
		e.Phase, e.Record, e.Err, e.Fragment)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

const fragmentSize = 64

func fragment(raw []byte) string {
	if len(raw) > fragmentSize {
		raw = raw[:fragmentSize]
	}
	if !utf8.Valid(raw) {
		return fmt.Sprintf("0x%x", raw)
	}
	return fmt.Sprintf("%q", raw)
}
