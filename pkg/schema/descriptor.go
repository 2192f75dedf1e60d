// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"reflect"
)

// Arity is the number of tokens a container consumes.
type Arity struct {
	N        int  // exact token count when Variadic is false
	Variadic bool // one or more tokens
}

// Descriptor is the resolved shape of one field type.
type Descriptor struct {
	Kind Kind
	Type reflect.Type

	// Elem is the inner descriptor of Optional and Container kinds.
	Elem *Descriptor
	// Items holds one descriptor per Tuple position; ItemIndex maps
	// positions to struct field indexes.
	Items     []*Descriptor
	ItemIndex []int

	Arity Arity
	Set   bool // map[T]struct{} container

	// Choices is the closed value set of Enum descriptors, or the `choices`
	// tag of a primitive field.
	Choices []string

	// Record is set on Record kinds once the resolver has expanded them.
	Record *Record
	// Variants lists union arms in declaration order.
	Variants []*Variant

	Metavar string
}

// Variant is one arm of a union.
type Variant struct {
	Name   string // subcommand name
	GoName string
	Index  int // field index in the union struct
	Type   reflect.Type
	Record *Record
}

// Record is a resolved struct type.
type Record struct {
	Type   reflect.Type
	Name   string // stable tag name, see TypeName
	Doc    string
	Fields []*Field
}

// Field is one resolved struct field.
type Field struct {
	GoName string
	Key    string // snake_case name, used for flags and document keys
	Path   string // dotted path from the root record
	Index  int
	Help   string
	Desc   *Descriptor

	// Boxed is set on `typeparam` fields, whose static type is an interface
	// holding a value of Desc.Type.
	Boxed bool

	// Default holds the resolved default when HasDefault is set. For
	// optional fields it may be a nil pointer.
	Default    reflect.Value
	HasDefault bool

	// DefaultVariant names the preselected arm of a union field.
	DefaultVariant string
}

// Flag returns the field's command-line segment.
func (f *Field) Flag() string {
	return Hyphenate(f.Key)
}

// Inner returns the descriptor under any Optional wrapper.
func (d *Descriptor) Inner() *Descriptor {
	if d.Kind == KindOptional {
		return d.Elem
	}
	return d
}

// Variant returns the union arm with the given name.
func (d *Descriptor) Variant(name string) (*Variant, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// VariantNames returns arm names in declaration order.
func (d *Descriptor) VariantNames() []string {
	names := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		names[i] = v.Name
	}
	return names
}

// Walk calls fn for every field of r and its nested records, unions and
// optional records, depth first in declaration order.
func (r *Record) Walk(fn func(*Field)) {
	for _, f := range r.Fields {
		fn(f)
		inner := f.Desc.Inner()
		switch inner.Kind {
		case KindRecord:
			inner.Record.Walk(fn)
		case KindUnion:
			for _, v := range inner.Variants {
				v.Record.Walk(fn)
			}
		}
	}
}
