// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dcargs derives a command-line interface and a tagged YAML format
// from an ordinary Go struct.
//
// Fields become flags named after their snake_case keys with hyphens, nested
// structs become dotted prefixes, and structs embedding OneOf become
// subcommands:
//
//	type Adam struct {
//		LR float64 `default:"0.001" help:"Learning rate."`
//	}
//
//	type SGD struct {
//		Momentum float64
//	}
//
//	type Optimizer struct {
//		dcargs.OneOf
//		Adam *Adam
//		SGD  *SGD
//	}
//
//	type Config struct {
//		Name      string `help:"Experiment name."`
//		Steps     int    `default:"100"`
//		Optimizer Optimizer
//	}
//
//	cfg := dcargs.Parse[Config]()
//	// prog --name run --steps 10 adam --lr 0.01
//
// # Field Types
//
//   - string, numbers, bool, time.Duration, url.URL, encoding.TextUnmarshaler
//   - enums: named types with String() and Values() []T methods
//   - []T and map[T]struct{} (one or more values), [N]T (exactly N)
//   - structs embedding Tuple (one value per field)
//   - *T for optional values; *Struct for all-or-nothing groups
//   - interface fields tagged `typeparam:"T"`, bound with WithTypeParam
//
// # Tags
//
//   - help:"..."      help text
//   - default:"..."   default value (comma separated for containers)
//   - choices:"a,b"   allowed values
//   - arg:"name"      field key or subcommand name override
//   - dcargs:"-"      exclude the field
package dcargs
