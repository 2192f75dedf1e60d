// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

// OneOf marks a struct as a union of records. Every other field of the struct
// must be a pointer to a record; exactly one of them is set.
//
//	type Optimizer struct {
//	    schema.OneOf
//	    Adam *AdamConfig
//	    SGD  *SGDConfig `arg:"sgd"`
//	}
type OneOf struct{}

// Tuple marks a struct as a fixed-size heterogeneous tuple. Each exported
// field is one position, read from one command-line token.
//
//	type Span struct {
//	    schema.Tuple
//	    Start int
//	    Unit  string
//	}
type Tuple struct{}
