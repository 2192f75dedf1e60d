// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Parse converts raw command-line tokens into a value of d.Type. Token
// counts are enforced by the caller's arity checks; Parse only rejects counts
// the shape cannot hold.
func (d *Descriptor) Parse(tokens []string) (reflect.Value, error) {
	switch d.Kind {
	case KindPrimitive, KindBool, KindEnum:
		if len(tokens) != 1 {
			return reflect.Value{}, fmt.Errorf("expected 1 value, got %d", len(tokens))
		}
		return d.ParseScalar(tokens[0])

	case KindOptional:
		v, err := d.Elem.Parse(tokens)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(d.Elem.Type)
		ptr.Elem().Set(v)
		return ptr, nil

	case KindContainer:
		return d.parseContainer(tokens)

	case KindTuple:
		if len(tokens) != len(d.Items) {
			return reflect.Value{}, fmt.Errorf("expected %d values, got %d", len(d.Items), len(tokens))
		}
		out := reflect.New(d.Type).Elem()
		for i, item := range d.Items {
			v, err := item.ParseScalar(tokens[i])
			if err != nil {
				return reflect.Value{}, err
			}
			out.Field(d.ItemIndex[i]).Set(v)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%s values are not read from tokens", d.Kind)
}

func (d *Descriptor) parseContainer(tokens []string) (reflect.Value, error) {
	switch {
	case d.Set:
		out := reflect.MakeMapWithSize(d.Type, len(tokens))
		present := reflect.New(d.Type.Elem()).Elem()
		for _, tok := range tokens {
			v, err := d.Elem.ParseScalar(tok)
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(v, present)
		}
		return out, nil

	case d.Type.Kind() == reflect.Array:
		if len(tokens) != d.Arity.N {
			return reflect.Value{}, fmt.Errorf("expected %d values, got %d", d.Arity.N, len(tokens))
		}
		out := reflect.New(d.Type).Elem()
		for i, tok := range tokens {
			v, err := d.Elem.ParseScalar(tok)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(v)
		}
		return out, nil
	}

	out := reflect.MakeSlice(d.Type, len(tokens), len(tokens))
	for i, tok := range tokens {
		v, err := d.Elem.ParseScalar(tok)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}

// ParseScalar converts one token for a scalar descriptor, enforcing its
// choice set.
func (d *Descriptor) ParseScalar(s string) (reflect.Value, error) {
	if len(d.Choices) > 0 && !slices.Contains(d.Choices, s) {
		return reflect.Value{}, &ChoiceError{Value: s, Choices: d.Choices}
	}
	switch d.Kind {
	case KindEnum:
		values := reflect.Zero(d.Type).MethodByName("Values").Call(nil)[0]
		for i := 0; i < values.Len(); i++ {
			v := values.Index(i)
			if v.Interface().(fmt.Stringer).String() == s {
				return v, nil
			}
		}
		return reflect.Value{}, &ChoiceError{Value: s, Choices: d.Choices}
	case KindBool, KindPrimitive:
		return convertScalar(d.Type, s)
	}
	return reflect.Value{}, fmt.Errorf("%s is not a scalar", d.Kind)
}

// ParseDefault converts a `default` tag. Container defaults are comma
// separated.
func (d *Descriptor) ParseDefault(tag string) (reflect.Value, error) {
	inner := d.Inner()
	var tokens []string
	switch inner.Kind {
	case KindContainer, KindTuple:
		for _, part := range strings.Split(tag, ",") {
			tokens = append(tokens, strings.TrimSpace(part))
		}
		if tag == "" {
			tokens = nil
		}
	case KindRecord, KindUnion:
		return reflect.Value{}, fmt.Errorf("%s fields take no default tag", inner.Kind)
	default:
		tokens = []string{tag}
	}
	return d.Parse(tokens)
}

// Format renders a value as the tokens that Parse would accept. A nil
// optional renders as no tokens.
func (d *Descriptor) Format(v reflect.Value) []string {
	switch d.Kind {
	case KindPrimitive, KindBool, KindEnum:
		return []string{d.FormatScalar(v)}
	case KindOptional:
		if v.IsNil() {
			return nil
		}
		return d.Elem.Format(v.Elem())
	case KindContainer:
		if d.Set {
			out := make([]string, 0, v.Len())
			for _, k := range v.MapKeys() {
				out = append(out, d.Elem.FormatScalar(k))
			}
			slices.Sort(out)
			return out
		}
		out := make([]string, v.Len())
		for i := range out {
			out[i] = d.Elem.FormatScalar(v.Index(i))
		}
		return out
	case KindTuple:
		out := make([]string, len(d.Items))
		for i, item := range d.Items {
			out[i] = item.FormatScalar(v.Field(d.ItemIndex[i]))
		}
		return out
	}
	return nil
}

// FormatScalar renders one scalar value.
func (d *Descriptor) FormatScalar(v reflect.Value) string {
	if d.Kind == KindEnum {
		return v.Interface().(fmt.Stringer).String()
	}
	return formatScalar(v)
}

func formatScalar(v reflect.Value) string {
	t := v.Type()
	switch {
	case t == durationType:
		return time.Duration(v.Int()).String()
	case t == urlType:
		u := v.Interface().(url.URL)
		return u.String()
	case t.Implements(textMarshalerType):
		if b, err := v.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(b)
		}
	case reflect.PointerTo(t).Implements(textMarshalerType):
		ptr := reflect.New(t)
		ptr.Elem().Set(v)
		if b, err := ptr.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(b)
		}
	}
	switch t.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, t.Bits())
	}
	return fmt.Sprint(v.Interface())
}

// convertScalar converts a string into a value of type t.
func convertScalar(t reflect.Type, value string) (reflect.Value, error) {
	out := reflect.New(t)
	if out.Type().Implements(textUnmarshalerType) {
		if err := out.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)); err != nil {
			return reflect.Value{}, fmt.Errorf("invalid %s value %q: %w", metavar(t), value, err)
		}
		return out.Elem(), nil
	}
	field := out.Elem()

	switch t {
	case durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid duration %q: %w", value, err)
		}
		field.SetInt(int64(d))
		return field, nil
	case urlType:
		u, err := url.Parse(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid URL %q: %w", value, err)
		}
		field.Set(reflect.ValueOf(*u))
		return field, nil
	}

	switch t.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool value %q: %w", value, err)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid int value %q: %w", value, err)
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid uint value %q: %w", value, err)
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid float value %q: %w", value, err)
		}
		field.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported field type %s", t)
	}
	return field, nil
}

// Clone copies v so that slices, maps and pointers reachable from it are
// not shared with the original.
func Clone(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(Clone(v.Elem()))
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(Clone(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), Clone(iter.Value()))
		}
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(Clone(v.Elem()))
		return out
	}
	out := reflect.New(v.Type()).Elem()
	out.Set(v)
	return out
}
