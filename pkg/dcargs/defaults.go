// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcargs

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
)

// LoadDefaults reads a TOML file into an instance of T, suitable for
// WithDefault. Keys are field keys; nested records are tables, a union is a
// table holding one subtable named after the selected subcommand. Missing
// keys keep the field's declared default; a missing key for a field with no
// default is an error, except for booleans and optionals.
func LoadDefaults[T any](path string, opts ...Option) (T, error) {
	var zero T
	o := newOptions(opts)

	var table map[string]any
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	t := reflect.TypeFor[T]()
	rec, err := schema.Resolve(t, schema.Options{TypeParams: o.params})
	if err != nil {
		return zero, err
	}
	v, err := fromTable(rec, table, "")
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	o.logf("dcargs: loaded defaults from %s", path)
	if t.Kind() == reflect.Pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v.Interface().(T), nil
}

// FindDefaults looks for name in startDir and its parents. It returns an
// error matching os.ErrNotExist when no file is found.
func FindDefaults(startDir, name string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
}

func fromTable(rec *schema.Record, table map[string]any, path string) (reflect.Value, error) {
	known := make(map[string]bool, len(rec.Fields))
	for _, f := range rec.Fields {
		known[f.Key] = true
	}
	var unknown []string
	for k := range table {
		if !known[k] {
			unknown = append(unknown, join(path, k))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return reflect.Value{}, fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}

	out := reflect.New(rec.Type).Elem()
	for _, f := range rec.Fields {
		raw, ok := table[f.Key]
		if !ok {
			switch {
			case f.HasDefault:
				out.Field(f.Index).Set(schema.Clone(f.Default))
				continue
			case f.Desc.Kind == schema.KindRecord:
				// Nested records pick up their members' declared defaults.
				raw = map[string]any{}
			case f.Desc.Kind == schema.KindUnion:
				return reflect.Value{}, fmt.Errorf("%s: missing table selecting one of %s", join(path, f.Key), f.Desc.Metavar)
			case f.Desc.Kind == schema.KindOptional, f.Desc.Kind == schema.KindBool:
				continue
			default:
				// A zero value here would turn a required flag into an
				// optional one.
				return reflect.Value{}, fmt.Errorf("%s: missing required key", join(path, f.Key))
			}
		}
		v, err := fromTOML(f.Desc, raw, join(path, f.Key))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(f.Index).Set(v)
	}
	return out, nil
}

func fromTOML(d *schema.Descriptor, raw any, path string) (reflect.Value, error) {
	switch d.Kind {
	case schema.KindOptional:
		v, err := fromTOML(d.Elem, raw, path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(d.Elem.Type)
		p.Elem().Set(v)
		return p, nil

	case schema.KindRecord:
		table, ok := raw.(map[string]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%s: want a table, got %T", path, raw)
		}
		return fromTable(d.Record, table, path)

	case schema.KindUnion:
		table, ok := raw.(map[string]any)
		if !ok || len(table) != 1 {
			return reflect.Value{}, fmt.Errorf("%s: want a table with one of %s", path, d.Metavar)
		}
		for name, sub := range table {
			variant, ok := d.Variant(name)
			if !ok {
				return reflect.Value{}, fmt.Errorf("%s: unknown subcommand %q, want one of %s", path, name, d.Metavar)
			}
			subTable, ok := sub.(map[string]any)
			if !ok {
				return reflect.Value{}, fmt.Errorf("%s.%s: want a table, got %T", path, name, sub)
			}
			rv, err := fromTable(variant.Record, subTable, join(path, name))
			if err != nil {
				return reflect.Value{}, err
			}
			u := reflect.New(d.Type).Elem()
			arm := reflect.New(variant.Type)
			arm.Elem().Set(rv)
			u.Field(variant.Index).Set(arm)
			return u, nil
		}

	case schema.KindContainer, schema.KindTuple:
		items, ok := raw.([]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%s: want an array, got %T", path, raw)
		}
		tokens := make([]string, len(items))
		for i, item := range items {
			tokens[i] = fmt.Sprint(item)
		}
		v, err := d.Parse(tokens)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s: %w", path, err)
		}
		return v, nil
	}

	v, err := d.ParseScalar(fmt.Sprint(raw))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
