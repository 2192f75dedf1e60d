// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

// Kind is the normalized shape of a field type.
type Kind int

const (
	KindInvalid   Kind = iota
	KindPrimitive      // string, numbers, durations, TextUnmarshaler types
	KindBool           // bool
	KindEnum           // closed set of named values
	KindContainer      // []T, [N]T, map[T]struct{}
	KindTuple          // struct embedding Tuple
	KindOptional       // *T
	KindRecord         // nested struct
	KindUnion          // struct embedding OneOf
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindContainer:
		return "container"
	case KindTuple:
		return "tuple"
	case KindOptional:
		return "optional"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	default:
		return "invalid"
	}
}

// IsScalar reports whether values of this kind are read from a single token.
func (k Kind) IsScalar() bool {
	return k == KindPrimitive || k == KindBool || k == KindEnum
}
