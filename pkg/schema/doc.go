// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema resolves Go struct types into descriptor trees.
//
// A record is an ordinary struct. Each exported field is resolved into a
// Descriptor describing how it is read from the command line and how it is
// written to a document:
//
//	type Config struct {
//	    Name    string        `help:"Run name"`
//	    Steps   int           `default:"100"`
//	    Tags    []string      `help:"Free-form labels"`
//	    Decay   *float64      // optional, nil when not given
//	    Color   Color         // enum: String() and Values() []Color
//	    Opt     Optimizer     // union: embeds schema.OneOf
//	    Ignored int           `dcargs:"-"`
//	}
//
// Unions are structs embedding OneOf whose remaining fields are pointers to
// records; exactly one pointer is non-nil. Tuples are structs embedding Tuple;
// each exported field is one position.
//
// Descriptor trees are built per call and never cached: the same type may be
// resolved with different defaults or type parameter bindings.
package schema
