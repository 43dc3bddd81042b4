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

// Field names of the record shapes. Vertex records carry TokenOutE/TokenInE
// adjacency maps keyed by edge label; standalone edge records carry their
// endpoints in TokenOut/TokenIn.
const (
	TokenID         = "id"
	TokenLabel      = "label"
	TokenKey        = "key"
	TokenValue      = "value"
	TokenProperties = "properties"
	TokenOutE       = "outE"
	TokenInE        = "inE"
	TokenOutV       = "outV"
	TokenInV        = "inV"
	TokenOut        = "out"
	TokenOutLabel   = "outLabel"
	TokenIn         = "in"
	TokenInLabel    = "inLabel"
)
