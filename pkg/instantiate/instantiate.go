// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package instantiate rebuilds typed records from raw parse results.
package instantiate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kevin-thankyou-lin/dcargs/pkg/argparse"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argspec"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
)

// Instantiate builds a value of rec.Type from res. Absent leaves take their
// resolved defaults; an absent union takes its default variant, rebuilt from
// that variant's own defaults.
func Instantiate(rec *schema.Record, res *argparse.Result) (reflect.Value, error) {
	b := &builder{res: res}
	return b.record(rec, "")
}

type builder struct {
	res *argparse.Result
}

// record builds rec. prefix is the key path of rec relative to its parser
// scope, used to name flags in errors.
func (b *builder) record(rec *schema.Record, prefix string) (reflect.Value, error) {
	out := reflect.New(rec.Type).Elem()
	for _, f := range rec.Fields {
		v, err := b.field(f, join(prefix, f.Key))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(f.Index).Set(v)
	}
	return out, nil
}

func (b *builder) field(f *schema.Field, rel string) (reflect.Value, error) {
	desc := f.Desc
	inner := desc.Inner()
	optional := desc.Kind == schema.KindOptional
	dest := argspec.Dest(f)

	switch inner.Kind {
	case schema.KindRecord:
		if optional && !b.res.Has(dest) {
			return b.fallback(f), nil
		}
		v, err := b.record(inner.Record, rel)
		if err != nil {
			return reflect.Value{}, err
		}
		if optional {
			return addr(v), nil
		}
		return v, nil

	case schema.KindUnion:
		return b.union(f)
	}

	tokens, ok := b.res.Values[dest]
	if !ok {
		switch {
		case f.HasDefault || optional:
			return b.fallback(f), nil
		case desc.Kind == schema.KindBool:
			// An absent switch is off.
			return reflect.Zero(desc.Type), nil
		}
		return reflect.Value{}, &argparse.MissingRequiredError{Names: []string{flag(rel)}}
	}

	if desc.Kind == schema.KindBool {
		on, err := strconv.ParseBool(tokens[0])
		if err != nil {
			return reflect.Value{}, &argparse.ConversionError{Flag: flag(rel), Value: tokens[0], Err: err}
		}
		return reflect.ValueOf(on).Convert(desc.Type), nil
	}

	v, err := desc.Parse(tokens)
	if err != nil {
		return reflect.Value{}, convertError(flag(rel), tokens, err)
	}
	return v, nil
}

func (b *builder) union(f *schema.Field) (reflect.Value, error) {
	desc := f.Desc
	inner := desc.Inner()
	dest := argspec.Dest(f)

	name, ok := b.res.Commands[dest]
	if !ok {
		switch {
		case f.DefaultVariant != "":
			name = f.DefaultVariant
		case desc.Kind == schema.KindOptional:
			return reflect.Zero(desc.Type), nil
		default:
			return reflect.Value{}, &argparse.MissingRequiredError{
				Names: []string{"{" + strings.Join(inner.VariantNames(), ",") + "}"},
				Group: true,
			}
		}
	}

	v, ok := inner.Variant(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("union %s has no variant %q", f.Path, name)
	}
	rv, err := b.record(v.Record, "")
	if err != nil {
		return reflect.Value{}, err
	}
	u := reflect.New(inner.Type).Elem()
	u.Field(v.Index).Set(addr(rv))
	if desc.Kind == schema.KindOptional {
		return addr(u), nil
	}
	return u, nil
}

// fallback returns a copy of the field's default, or its zero value.
func (b *builder) fallback(f *schema.Field) reflect.Value {
	if f.HasDefault {
		return schema.Clone(f.Default)
	}
	return reflect.Zero(f.Desc.Type)
}

func convertError(flag string, tokens []string, err error) error {
	var ce *schema.ChoiceError
	if errors.As(err, &ce) {
		return &argparse.InvalidChoiceError{Flag: flag, Value: ce.Value, Choices: ce.Choices}
	}
	return &argparse.ConversionError{Flag: flag, Value: strings.Join(tokens, " "), Err: err}
}

func addr(v reflect.Value) reflect.Value {
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

func flag(rel string) string {
	return "--" + schema.Hyphenate(rel)
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
