// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	stringerType        = reflect.TypeFor[fmt.Stringer]()
	durationType        = reflect.TypeFor[time.Duration]()
	urlType             = reflect.TypeFor[url.URL]()
	oneOfType           = reflect.TypeFor[OneOf]()
	tupleType           = reflect.TypeFor[Tuple]()
)

// Build resolves a type into a descriptor. Record and union descriptors are
// returned unexpanded: Record and Variant.Record are filled in by Resolve.
//
// Build is a pure function of t.
func Build(t reflect.Type) (*Descriptor, error) {
	switch {
	case isEnum(t):
		return enumDescriptor(t)
	case t.Kind() == reflect.Bool:
		return &Descriptor{Kind: KindBool, Type: t, Metavar: "{true,false}"}, nil
	case isPrimitive(t):
		return &Descriptor{Kind: KindPrimitive, Type: t, Metavar: metavar(t)}, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return nil, unsupported(t, "pointer to pointer")
		}
		inner, err := Build(t.Elem())
		if err != nil {
			return nil, err
		}
		if inner.Kind == KindOptional {
			return nil, unsupported(t, "nested optional")
		}
		return &Descriptor{Kind: KindOptional, Type: t, Elem: inner, Metavar: inner.Metavar}, nil

	case reflect.Slice:
		elem, err := buildElem(t, t.Elem())
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindContainer, Type: t, Elem: elem, Arity: Arity{Variadic: true}, Metavar: elem.Metavar}, nil

	case reflect.Array:
		if t.Len() == 0 {
			return nil, unsupported(t, "zero-length array")
		}
		elem, err := buildElem(t, t.Elem())
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindContainer, Type: t, Elem: elem, Arity: Arity{N: t.Len()}, Metavar: elem.Metavar}, nil

	case reflect.Map:
		if t.Elem().Kind() != reflect.Struct || t.Elem().NumField() != 0 {
			return nil, unsupported(t, "maps are only supported as sets (map[T]struct{})")
		}
		elem, err := buildElem(t, t.Key())
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindContainer, Type: t, Elem: elem, Set: true, Arity: Arity{Variadic: true}, Metavar: elem.Metavar}, nil

	case reflect.Struct:
		switch {
		case embeds(t, oneOfType):
			return buildUnion(t)
		case embeds(t, tupleType):
			return buildTuple(t)
		}
		return &Descriptor{Kind: KindRecord, Type: t}, nil

	case reflect.Interface:
		return nil, unsupported(t, "interface fields need a `typeparam` tag")
	}
	return nil, unsupported(t, "no command-line representation for kind %s", t.Kind())
}

// BuildField resolves the type of a struct field, substituting type
// parameters. boxed reports whether the field holds the bound type behind an
// interface.
func BuildField(sf reflect.StructField, params map[string]reflect.Type) (d *Descriptor, boxed bool, err error) {
	t := sf.Type
	if t.Kind() == reflect.Interface {
		name := sf.Tag.Get("typeparam")
		if name == "" {
			return nil, false, unsupported(t, "interface fields need a `typeparam` tag")
		}
		bound, ok := params[name]
		if !ok || bound == nil {
			return nil, false, &UnboundTypeVariableError{Name: name}
		}
		if !bound.Implements(t) {
			return nil, false, unsupported(t, "type parameter %s bound to %v, which does not implement it", name, bound)
		}
		d, err := Build(bound)
		return d, true, err
	}
	d, err = Build(t)
	return d, false, err
}

func buildElem(container, t reflect.Type) (*Descriptor, error) {
	d, err := Build(t)
	if err != nil {
		return nil, err
	}
	if !d.Kind.IsScalar() {
		return nil, unsupported(container, "containers hold scalar values only, got %s", d.Kind)
	}
	return d, nil
}

func buildTuple(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Kind: KindTuple, Type: t}
	var metavars []string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == tupleType {
			continue
		}
		if !sf.IsExported() {
			return nil, unsupported(t, "tuple position %s is unexported", sf.Name)
		}
		item, err := buildElem(t, sf.Type)
		if err != nil {
			return nil, err
		}
		d.Items = append(d.Items, item)
		d.ItemIndex = append(d.ItemIndex, i)
		metavars = append(metavars, item.Metavar)
	}
	if len(d.Items) == 0 {
		return nil, unsupported(t, "tuple has no positions")
	}
	d.Arity = Arity{N: len(d.Items)}
	d.Metavar = strings.Join(metavars, " ")
	return d, nil
}

func buildUnion(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Kind: KindUnion, Type: t}
	seen := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == oneOfType {
			continue
		}
		if !sf.IsExported() {
			return nil, unsupported(t, "union arm %s is unexported", sf.Name)
		}
		arm := sf.Type
		if arm.Kind() != reflect.Pointer || arm.Elem().Kind() != reflect.Struct {
			return nil, unsupported(t, "union arm %s must be a pointer to a record, got %v", sf.Name, arm)
		}
		inner, err := Build(arm.Elem())
		if err != nil {
			return nil, err
		}
		if inner.Kind != KindRecord {
			return nil, unsupported(t, "union arm %s must be a record, got %s", sf.Name, inner.Kind)
		}
		name := sf.Tag.Get("arg")
		if name == "" {
			name = Hyphenate(Key(sf.Name))
		}
		if seen[name] {
			return nil, unsupported(t, "duplicate union arm name %q", name)
		}
		seen[name] = true
		d.Variants = append(d.Variants, &Variant{Name: name, GoName: sf.Name, Index: i, Type: arm.Elem()})
	}
	if len(d.Variants) == 0 {
		return nil, unsupported(t, "union has no arms")
	}
	d.Metavar = "{" + strings.Join(d.VariantNames(), ",") + "}"
	return d, nil
}

func enumDescriptor(t reflect.Type) (*Descriptor, error) {
	values := reflect.Zero(t).MethodByName("Values").Call(nil)[0]
	if values.Len() == 0 {
		return nil, unsupported(t, "enum has no values")
	}
	names := make([]string, values.Len())
	seen := make(map[string]bool)
	for i := range names {
		name := values.Index(i).Interface().(fmt.Stringer).String()
		if seen[name] {
			return nil, unsupported(t, "duplicate enum name %q", name)
		}
		seen[name] = true
		names[i] = name
	}
	return &Descriptor{
		Kind:    KindEnum,
		Type:    t,
		Choices: names,
		Metavar: "{" + strings.Join(names, ",") + "}",
	}, nil
}

// isEnum reports whether t is a named type with String() and Values() []T.
func isEnum(t reflect.Type) bool {
	if t.Name() == "" || !t.Implements(stringerType) {
		return false
	}
	m, ok := t.MethodByName("Values")
	if !ok {
		return false
	}
	mt := m.Type
	return mt.NumIn() == 1 && mt.NumOut() == 1 && mt.Out(0) == reflect.SliceOf(t)
}

func isPrimitive(t reflect.Type) bool {
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	if t == durationType || t == urlType {
		return true
	}
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func embeds(t, marker reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == marker {
			return true
		}
	}
	return false
}

func metavar(t reflect.Type) string {
	if t.PkgPath() != "" && t.Name() != "" {
		return strings.ToUpper(TypeName(t))
	}
	switch t.Kind() {
	case reflect.String:
		return "STR"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "INT"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "UINT"
	case reflect.Float32, reflect.Float64:
		return "FLOAT"
	}
	return "VALUE"
}
