// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argparse turns a flat argument specification into raw string
// values.
//
// A Spec lists long flags (possibly dotted, like --model.hidden-size), each
// with an arity, an optional choice set and a required bit, plus subcommand
// groups. Parse scans the tokens, enforces the Spec and returns the
// raw tokens keyed by destination path; it converts nothing. Help is rendered
// from the same Spec.
//
// # Flag Syntax
//
//   - Boolean switches: --verbose, --no-cache
//   - Values: --name value, --name=value, --lines -5
//   - Multiple values: --tags a b c (stops at the next flag or subcommand)
//   - Subcommands: bare tokens naming a variant of the next pending group
//   - Help: -h or --help anywhere, rendered for the current subcommand
package argparse
