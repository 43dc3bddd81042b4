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

// Ref identifies an edge endpoint without holding it.
type Ref struct {
	ID    any
	Label string
}

// DetachedEdge is a standalone edge snapshot. It carries both endpoints by
// identity and label and is independent of any identity cache.
type DetachedEdge struct {
	ID         any
	Label      string
	Properties map[string]any
	Out        Ref
	In         Ref
}

func (e *DetachedEdge) String() string {
	return fmt.Sprintf("e[%v][%v-%s->%v]", e.ID, e.Out.ID, e.Label, e.In.ID)
}

// DetachedVertexProperty is a standalone vertex property snapshot. The owning
// vertex is chosen by whoever attaches it.
type DetachedVertexProperty struct {
	ID         any
	Key        string
	Value      any
	Properties map[string]any
}

func (p *DetachedVertexProperty) String() string {
	return fmt.Sprintf("vp[%s->%v]", p.Key, p.Value)
}

// DetachedProperty is a standalone key/value snapshot of an edge property or
// a meta-property.
type DetachedProperty struct {
	Key   string
	Value any
}

func (p *DetachedProperty) String() string {
	return fmt.Sprintf("p[%s->%v]", p.Key, p.Value)
}
