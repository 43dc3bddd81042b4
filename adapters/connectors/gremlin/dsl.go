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

package gremlin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Query is a (partial) Groovy traversal built with the DSL.
type Query struct {
	query string
}

type Graph struct{}

// G is the starting point for building queries.
var G Graph

func (g *Graph) V(ids ...string) *Query {
	return &Query{query: fmt.Sprintf("g.V(%s)", strings.Join(ids, ", "))}
}

func (g *Graph) E(ids ...string) *Query {
	return &Query{query: fmt.Sprintf("g.E(%s)", strings.Join(ids, ", "))}
}

func (g *Graph) AddV(label string) *Query {
	return &Query{query: fmt.Sprintf(`g.addV("%s")`, EscapeString(label))}
}

// Current starts an anonymous traversal.
func Current() *Query {
	return &Query{query: "__"}
}

func (q *Query) String() string {
	return q.query
}

func (q *Query) V(ids ...string) *Query {
	return extendQuery(q, ".V(%s)", strings.Join(ids, ", "))
}

func (q *Query) AddE(label string) *Query {
	return extendQuery(q, `.addE("%s")`, EscapeString(label))
}

// Property sets a property from a literal produced by Literal.
func (q *Query) Property(key string, literal string) *Query {
	return extendQuery(q, `.property("%s", %s)`, EscapeString(key), literal)
}

// ListProperty adds a value to a vertex property with list cardinality.
// meta holds alternating meta-property keys and literals.
func (q *Query) ListProperty(key string, literal string, meta ...string) *Query {
	var b strings.Builder
	fmt.Fprintf(&b, `.property(list, "%s", %s`, EscapeString(key), literal)
	for i := 0; i+1 < len(meta); i += 2 {
		fmt.Fprintf(&b, `, "%s", %s`, EscapeString(meta[i]), meta[i+1])
	}
	b.WriteString(")")
	return extendQuery(q, "%s", b.String())
}

func (q *Query) Has(key string, literal string) *Query {
	return extendQuery(q, `.has("%s", %s)`, EscapeString(key), literal)
}

func (q *Query) Values(propNames ...string) *Query {
	sanitized := make([]string, 0, len(propNames))
	for _, propName := range propNames {
		sanitized = append(sanitized, fmt.Sprintf(`"%s"`, EscapeString(propName)))
	}
	return extendQuery(q, ".values(%s)", strings.Join(sanitized, ", "))
}

func (q *Query) As(name string) *Query {
	return extendQuery(q, `.as("%s")`, EscapeString(name))
}

// FromRef points the edge being added to a reference made with As.
func (q *Query) FromRef(reference string) *Query {
	return extendQuery(q, `.from("%s")`, EscapeString(reference))
}

func (q *Query) ID() *Query {
	return extendQuery(q, ".id()")
}

func (q *Query) Label() *Query {
	return extendQuery(q, ".label()")
}

func (q *Query) OutV() *Query {
	return extendQuery(q, ".outV()")
}

func (q *Query) InV() *Query {
	return extendQuery(q, ".inV()")
}

func (q *Query) Limit(n int) *Query {
	return extendQuery(q, ".limit(%d)", n)
}

func (q *Query) Count() *Query {
	return extendQuery(q, ".count()")
}

func (q *Query) Project(keys ...string) *Query {
	sanitized := make([]string, 0, len(keys))
	for _, key := range keys {
		sanitized = append(sanitized, fmt.Sprintf(`"%s"`, EscapeString(key)))
	}
	return extendQuery(q, ".project(%s)", strings.Join(sanitized, ", "))
}

func (q *Query) By(query *Query) *Query {
	return extendQuery(q, ".by(%s)", query.String())
}

// EscapeString escapes a string so it can be embedded in a double quoted
// Groovy literal.
func EscapeString(str string) string {
	s := strings.ReplaceAll(str, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, `$`, `\$`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// Literal renders a property value as a Groovy literal. Values without a
// literal form are stored as their JSON encoding.
func Literal(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", fmt.Errorf("null values cannot be stored")
	case string:
		return fmt.Sprintf(`"%s"`, EscapeString(t)), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return fmt.Sprintf("(long) %d", t), nil
	case int:
		return fmt.Sprintf("(long) %d", t), nil
	case float64:
		return fmt.Sprintf("(double) %s", strconv.FormatFloat(t, 'g', -1, 64)), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return fmt.Sprintf("%dL", i), nil
		}
		return t.String(), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("value of type %T: %w", v, err)
		}
		return fmt.Sprintf(`"%s"`, EscapeString(string(b))), nil
	}
}

func extendQuery(query *Query, format string, vals ...any) *Query {
	return &Query{query: query.query + fmt.Sprintf(format, vals...)}
}
