// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamlcodec

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
	"gopkg.in/yaml.v3"
)

type encoder struct {
	path []string
}

func (e *encoder) record(rec *schema.Record, v reflect.Value) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: recordTag(rec)}
	for _, f := range rec.Fields {
		e.path = append(e.path, f.Key)
		fv := v.Field(f.Index)
		if f.Boxed {
			fv = fv.Elem()
			if fv.IsValid() && fv.Type() != f.Desc.Type {
				err := fmt.Errorf("yamlcodec: %s: holds %v, want %v", e.where(), fv.Type(), f.Desc.Type)
				e.path = e.path[:len(e.path)-1]
				return nil, err
			}
		}
		val, err := e.value(f.Desc, fv)
		e.path = e.path[:len(e.path)-1]
		if err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		n.Content = append(n.Content, key, val)
	}
	return n, nil
}

func (e *encoder) value(d *schema.Descriptor, v reflect.Value) (*yaml.Node, error) {
	if !v.IsValid() {
		return nullNode(), nil
	}
	switch d.Kind {
	case schema.KindOptional:
		if v.IsNil() {
			return nullNode(), nil
		}
		return e.value(d.Elem, v.Elem())

	case schema.KindRecord:
		return e.record(d.Record, v)

	case schema.KindUnion:
		var armed []*schema.Variant
		for _, variant := range d.Variants {
			if !v.Field(variant.Index).IsNil() {
				armed = append(armed, variant)
			}
		}
		if len(armed) != 1 {
			return nil, fmt.Errorf("yamlcodec: %s: union has %d variants set, want 1", e.where(), len(armed))
		}
		return e.record(armed[0].Record, v.Field(armed[0].Index).Elem())

	case schema.KindContainer, schema.KindTuple:
		if isNilContainer(d, v) {
			return nullNode(), nil
		}
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		items := d.Format(v)
		for i, tok := range items {
			item := d.Elem
			if d.Kind == schema.KindTuple {
				item = d.Items[i]
			}
			n.Content = append(n.Content, scalarNode(item, tok))
		}
		return n, nil
	}
	return scalarNode(d, d.FormatScalar(v)), nil
}

func (e *encoder) where() string {
	return strings.Join(e.path, ".")
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// scalarNode builds the node for one formatted scalar. Plain tags are
// dropped by the emitter when they match the value's implicit type, and
// strings that would read back as another type are quoted.
func scalarNode(d *schema.Descriptor, s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: s, Tag: "!!str"}
	switch d.Kind {
	case schema.KindEnum:
		n.Tag = enumTag(d.Type)
	case schema.KindBool:
		n.Tag = "!!bool"
	case schema.KindPrimitive:
		if reflect.PointerTo(d.Type).Implements(textMarshalerType) || d.Type.Implements(textMarshalerType) {
			break
		}
		switch d.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if d.Type != durationType {
				n.Tag = "!!int"
			}
		case reflect.Float32, reflect.Float64:
			n.Tag = "!!float"
		}
	}
	return n
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// isNilContainer reports whether v is a nil slice or set. It is written as
// null so that it reads back as nil rather than empty.
func isNilContainer(d *schema.Descriptor, v reflect.Value) bool {
	if d.Kind != schema.KindContainer {
		return false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}
