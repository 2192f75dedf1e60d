// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamlcodec

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeFor[time.Duration]()

type decoder struct {
	tags map[string]reflect.Type
}

func (d *decoder) record(rec *schema.Record, n *yaml.Node, path string) (reflect.Value, error) {
	n = resolveAlias(n)
	if err := d.expectTag(n, recordTag(rec), path); err != nil {
		return reflect.Value{}, err
	}
	if n.Kind != yaml.MappingNode {
		return reflect.Value{}, &ShapeMismatchError{Path: path, Want: "mapping", Got: kindName(n)}
	}

	values := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		values[n.Content[i].Value] = n.Content[i+1]
	}
	known := make(map[string]bool, len(rec.Fields))

	out := reflect.New(rec.Type).Elem()
	for _, f := range rec.Fields {
		known[f.Key] = true
		fpath := join(path, f.Key)
		node, ok := values[f.Key]
		if !ok {
			switch {
			case f.HasDefault:
				out.Field(f.Index).Set(schema.Clone(f.Default))
			case f.Desc.Kind == schema.KindOptional:
			default:
				return reflect.Value{}, &ShapeMismatchError{Path: fpath, Want: "a value", Got: "missing key"}
			}
			continue
		}
		v, err := d.value(f.Desc, node, fpath)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(f.Index).Set(v)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := n.Content[i].Value; !known[key] {
			return reflect.Value{}, &ShapeMismatchError{Path: join(path, key), Want: "a field of " + rec.Name, Got: "unknown key"}
		}
	}
	return out, nil
}

func (d *decoder) value(desc *schema.Descriptor, n *yaml.Node, path string) (reflect.Value, error) {
	n = resolveAlias(n)
	if isNull(n) {
		if desc.Kind != schema.KindOptional && !nilable(desc) {
			return reflect.Value{}, &ShapeMismatchError{Path: path, Want: desc.Kind.String(), Got: "null"}
		}
		return reflect.Zero(desc.Type), nil
	}

	switch desc.Kind {
	case schema.KindOptional:
		v, err := d.value(desc.Elem, n, path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(desc.Elem.Type)
		p.Elem().Set(v)
		return p, nil

	case schema.KindRecord:
		return d.record(desc.Record, n, path)

	case schema.KindUnion:
		for _, variant := range desc.Variants {
			if n.Tag != recordTag(variant.Record) {
				continue
			}
			rv, err := d.record(variant.Record, n, path)
			if err != nil {
				return reflect.Value{}, err
			}
			u := reflect.New(desc.Type).Elem()
			arm := reflect.New(variant.Type)
			arm.Elem().Set(rv)
			u.Field(variant.Index).Set(arm)
			return u, nil
		}
		want := make([]string, len(desc.Variants))
		for i, variant := range desc.Variants {
			want[i] = recordTag(variant.Record)
		}
		return reflect.Value{}, d.tagError(n, strings.Join(want, " or "), path)

	case schema.KindContainer, schema.KindTuple:
		if n.Kind != yaml.SequenceNode {
			return reflect.Value{}, &ShapeMismatchError{Path: path, Want: "sequence", Got: kindName(n)}
		}
		tokens := make([]string, len(n.Content))
		for i, item := range n.Content {
			itemDesc := desc.Elem
			if desc.Kind == schema.KindTuple {
				if i >= len(desc.Items) {
					return reflect.Value{}, &ShapeMismatchError{Path: path, Want: desc.Metavar, Got: "too many items"}
				}
				itemDesc = desc.Items[i]
			}
			tok, err := d.scalar(itemDesc, item, join(path, strconv.Itoa(i)))
			if err != nil {
				return reflect.Value{}, err
			}
			tokens[i] = tok
		}
		v, err := desc.Parse(tokens)
		if err != nil {
			return reflect.Value{}, &ShapeMismatchError{Path: path, Want: desc.Metavar, Got: strings.Join(tokens, " "), Err: err}
		}
		return v, nil
	}

	tok, err := d.scalar(desc, n, path)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := desc.ParseScalar(tok)
	if err != nil {
		return reflect.Value{}, &ShapeMismatchError{Path: path, Want: desc.Metavar, Got: tok, Err: err}
	}
	return v, nil
}

// scalar returns the text of a scalar node after checking enum tags.
func (d *decoder) scalar(desc *schema.Descriptor, n *yaml.Node, path string) (string, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode {
		return "", &ShapeMismatchError{Path: path, Want: "scalar", Got: kindName(n)}
	}
	if desc.Kind == schema.KindEnum && strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		if err := d.expectTag(n, enumTag(desc.Type), path); err != nil {
			return "", err
		}
	}
	return n.Value, nil
}

// expectTag checks that n carries want.
func (d *decoder) expectTag(n *yaml.Node, want, path string) error {
	if n.Tag == want {
		return nil
	}
	return d.tagError(n, want, path)
}

func (d *decoder) tagError(n *yaml.Node, want, path string) error {
	if isLocalTag(n.Tag) {
		if _, ok := d.tags[n.Tag]; !ok {
			return &UnknownTypeTagError{Path: path, Tag: n.Tag}
		}
		return &ShapeMismatchError{Path: path, Want: want, Got: n.Tag}
	}
	return &ShapeMismatchError{Path: path, Want: want, Got: kindName(n)}
}

// nilable reports whether desc is a slice or set container, whose nil value
// is written as null.
func nilable(desc *schema.Descriptor) bool {
	if desc.Kind != schema.KindContainer {
		return false
	}
	k := desc.Type.Kind()
	return k == reflect.Slice || k == reflect.Map
}

func isLocalTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		if n.Tag != "" && n.Tag != "!!map" {
			return "mapping " + n.Tag
		}
		return "untagged mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar " + n.Value
	case yaml.AliasNode:
		return "alias"
	}
	return "empty node"
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
