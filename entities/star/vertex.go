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

package star

import "fmt"

// VertexProperty is a single key/value pair of a vertex. A key with several
// values yields one VertexProperty per value. ID is optional inside a star
// record. Properties holds meta-properties.
type VertexProperty struct {
	ID         any
	Key        string
	Value      any
	Properties map[string]any
}

// Edge is one entry of a star vertex adjacency list. The vertex owning the
// list is the implicit second endpoint; Other is the identity of the vertex
// on the opposite side, it is resolved against a store or an identity cache
// when the edge is attached.
type Edge struct {
	ID         any
	Label      string
	Other      any
	Properties map[string]any
}

// Vertex is a star vertex: a vertex plus the adjacency lists its record
// declared. It is immutable, accessors hand out copies.
type Vertex struct {
	id         any
	label      string
	properties []VertexProperty
	outEdges   []Edge
	inEdges    []Edge
}

func NewVertex(id any, label string, properties []VertexProperty, outEdges, inEdges []Edge) *Vertex {
	return &Vertex{
		id:         id,
		label:      label,
		properties: append([]VertexProperty(nil), properties...),
		outEdges:   append([]Edge(nil), outEdges...),
		inEdges:    append([]Edge(nil), inEdges...),
	}
}

func (v *Vertex) ID() any {
	return v.id
}

func (v *Vertex) Label() string {
	return v.label
}

func (v *Vertex) Properties() []VertexProperty {
	return append([]VertexProperty(nil), v.properties...)
}

// Values returns all values stored under key in record order.
func (v *Vertex) Values(key string) []any {
	var out []any
	for _, p := range v.properties {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

func (v *Vertex) OutEdges() []Edge {
	return append([]Edge(nil), v.outEdges...)
}

func (v *Vertex) InEdges() []Edge {
	return append([]Edge(nil), v.inEdges...)
}

// Edges returns the adjacency selected by dir, outgoing edges first.
func (v *Vertex) Edges(dir Direction) []Edge {
	var out []Edge
	if dir.Includes(DirectionOut) {
		out = append(out, v.outEdges...)
	}
	if dir.Includes(DirectionIn) {
		out = append(out, v.inEdges...)
	}
	return out
}

// Detach turns an adjacency entry of v into a self-describing edge snapshot.
// dir tells on which list e was found. The label of the opposite endpoint is
// not part of a star record and stays empty.
func (v *Vertex) Detach(e Edge, dir Direction) *DetachedEdge {
	self := Ref{ID: v.id, Label: v.label}
	other := Ref{ID: e.Other}

	d := &DetachedEdge{
		ID:         e.ID,
		Label:      e.Label,
		Properties: e.Properties,
	}
	if dir == DirectionIn {
		d.Out, d.In = other, self
	} else {
		d.Out, d.In = self, other
	}
	return d
}

func (v *Vertex) String() string {
	return fmt.Sprintf("v[%v]", v.id)
}
