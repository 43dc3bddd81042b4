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

import (
	"fmt"
	"strings"
)

// Direction selects which adjacency of a star record is decoded and
// attached.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionOut
	DirectionIn
	DirectionBoth
)

// Includes reports whether d selects the adjacency of other, which must be
// DirectionOut or DirectionIn.
func (d Direction) Includes(other Direction) bool {
	return d == DirectionBoth || (d != DirectionNone && d == other)
}

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	case DirectionBoth:
		return "both"
	default:
		return "none"
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DirectionNone, nil
	case "out":
		return DirectionOut, nil
	case "in":
		return DirectionIn, nil
	case "both":
		return DirectionBoth, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q, use one of none, out, in, both", s)
	}
}
