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

// Package graph defines the capabilities a target graph store offers to the
// loader. Only Graph is mandatory, Resolver and PropertyWriter are detected
// by type assertion.
package graph

import (
	"context"
	"errors"

	"github.com/weaviate/graphio/entities/star"
)

var (
	// ErrNotFound is returned by a Resolver when no element matches.
	ErrNotFound = errors.New("element not found")
	// ErrDuplicateID is returned when an element with the same identity
	// already exists in the store.
	ErrDuplicateID = errors.New("duplicate element identity")
	// ErrUnsupported is returned when the store lacks an optional
	// capability.
	ErrUnsupported = errors.New("operation not supported by graph store")
)

// Element is a live element handle owned by a store.
type Element interface {
	ID() any
	Label() string
}

type Vertex interface {
	Element
}

type Edge interface {
	Element
	OutVertex() Vertex
	InVertex() Vertex
}

type VertexProperty interface {
	Element
	Key() string
	Value() any
}

type Property interface {
	Key() string
	Value() any
}

// Graph is the write capability the loader needs. Commit is only called
// when SupportsTransactions reports true; a transaction is opened implicitly
// by the first mutation after a commit.
type Graph interface {
	AddVertex(ctx context.Context, id any, label string, props []star.VertexProperty) (Vertex, error)
	AddEdge(ctx context.Context, out, in Vertex, label string, id any, props map[string]any) (Edge, error)
	SupportsTransactions() bool
	Commit(ctx context.Context) error
}

// Resolver finds existing elements by the identity they were loaded with.
type Resolver interface {
	VertexByID(ctx context.Context, id any) (Vertex, error)
	EdgeByID(ctx context.Context, id any) (Edge, error)
}

// PropertyWriter adds properties to existing elements.
type PropertyWriter interface {
	AddVertexProperty(ctx context.Context, v Vertex, id any, key string, value any,
		meta map[string]any) (VertexProperty, error)
	SetProperty(ctx context.Context, el Element, key string, value any) (Property, error)
}

// PropertyReader reads properties of existing elements.
type PropertyReader interface {
	VertexProperties(ctx context.Context, v Vertex, key string) ([]VertexProperty, error)
	Property(ctx context.Context, el Element, key string) (Property, error)
}
