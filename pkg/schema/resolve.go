// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Options controls record resolution.
type Options struct {
	// TypeParams binds the names used in `typeparam` tags.
	TypeParams map[string]reflect.Type
	// Default is an instance of the root record (or a pointer to one) whose
	// field values override declared defaults.
	Default reflect.Value
}

// describer is implemented by records that document themselves.
type describer interface {
	Description() string
}

// Resolve builds the descriptor tree of the record type t.
func Resolve(t reflect.Type, opts Options) (*Record, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	d, err := Build(t)
	if err != nil {
		return nil, err
	}
	if d.Kind != KindRecord {
		return nil, unsupported(t, "root must be a record, got %s", d.Kind)
	}

	def := opts.Default
	if def.IsValid() && def.Kind() == reflect.Pointer {
		if def.IsNil() {
			def = reflect.Value{}
		} else {
			def = def.Elem()
		}
	}
	if def.IsValid() && def.Type() != t {
		return nil, fmt.Errorf("default instance has type %v, want %v", def.Type(), t)
	}

	r := &resolver{params: opts.TypeParams, active: make(map[reflect.Type]bool)}
	return r.record(t, "", def)
}

type resolver struct {
	params map[string]reflect.Type
	active map[reflect.Type]bool // records on the current path
}

func (r *resolver) record(t reflect.Type, path string, def reflect.Value) (*Record, error) {
	if r.active[t] {
		return nil, &FieldError{Path: path, Type: t, Err: unsupported(t, "recursive record")}
	}
	r.active[t] = true
	defer delete(r.active, t)

	rec := &Record{Type: t, Name: TypeName(t), Doc: describe(t)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("dcargs") == "-" {
			continue
		}
		f, err := r.field(sf, i, path, def)
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, f)
	}
	return rec, nil
}

func (r *resolver) field(sf reflect.StructField, index int, prefix string, def reflect.Value) (*Field, error) {
	key := sf.Tag.Get("arg")
	if key == "" {
		key = Key(sf.Name)
	}
	path := joinPath(prefix, key)
	fail := func(err error) (*Field, error) {
		var fe *FieldError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FieldError{Path: path, Type: sf.Type, Err: err}
	}

	desc, boxed, err := BuildField(sf, r.params)
	if err != nil {
		return fail(err)
	}
	f := &Field{
		GoName: sf.Name,
		Key:    key,
		Path:   path,
		Index:  index,
		Help:   sf.Tag.Get("help"),
		Desc:   desc,
		Boxed:  boxed,
	}

	if choices, ok := sf.Tag.Lookup("choices"); ok {
		if err := applyChoices(desc, choices); err != nil {
			return fail(err)
		}
	}

	var inst reflect.Value
	if def.IsValid() {
		inst = def.Field(index)
		if boxed {
			if inst.IsNil() {
				inst = reflect.Value{}
			} else if inst = inst.Elem(); inst.Type() != desc.Type {
				return fail(fmt.Errorf("default holds %v, want %v", inst.Type(), desc.Type))
			}
		}
	}

	inner := desc.Inner()
	switch inner.Kind {
	case KindRecord:
		var sub reflect.Value
		if inst.IsValid() {
			f.Default, f.HasDefault = inst, true
			sub = derefOrInvalid(inst)
		}
		rec, err := r.record(inner.Type, path, sub)
		if err != nil {
			return nil, err
		}
		inner.Record = rec
		return f, nil

	case KindUnion:
		var sub reflect.Value
		if inst.IsValid() {
			f.Default, f.HasDefault = inst, true
			sub = derefOrInvalid(inst)
		}
		if sub.IsValid() {
			var armed []string
			for _, v := range inner.Variants {
				if !sub.Field(v.Index).IsNil() {
					armed = append(armed, v.Name)
				}
			}
			if len(armed) != 1 {
				return fail(&DefaultVariantError{Path: path, Armed: armed})
			}
			f.DefaultVariant = armed[0]
		}
		for _, v := range inner.Variants {
			var vdef reflect.Value
			if sub.IsValid() && !sub.Field(v.Index).IsNil() {
				vdef = sub.Field(v.Index).Elem()
			}
			rec, err := r.record(v.Type, joinPath(path, v.Name), vdef)
			if err != nil {
				return nil, err
			}
			v.Record = rec
		}
		return f, nil
	}

	switch {
	case inst.IsValid():
		f.Default, f.HasDefault = Clone(inst), true
	case sf.Tag.Get("default") != "":
		v, err := desc.ParseDefault(sf.Tag.Get("default"))
		if err != nil {
			return fail(fmt.Errorf("invalid default %q: %w", sf.Tag.Get("default"), err))
		}
		f.Default, f.HasDefault = v, true
	}
	return f, nil
}

// applyChoices restricts the primitive values of d to a comma-separated set.
func applyChoices(d *Descriptor, tag string) error {
	target := d.Inner()
	if target.Kind == KindContainer {
		target = target.Elem
	}
	if target.Kind != KindPrimitive {
		return fmt.Errorf("choices apply to primitive values, not %s", target.Kind)
	}
	var choices []string
	for _, c := range strings.Split(tag, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, err := convertScalar(target.Type, c); err != nil {
			return fmt.Errorf("invalid choice %q: %w", c, err)
		}
		choices = append(choices, c)
	}
	if len(choices) == 0 {
		return errors.New("empty choices tag")
	}
	target.Choices = choices
	target.Metavar = "{" + strings.Join(choices, ",") + "}"
	if d.Kind == KindOptional || d.Kind == KindContainer {
		d.Metavar = target.Metavar
	}
	if d.Kind == KindOptional && d.Elem.Kind == KindContainer {
		d.Elem.Metavar = target.Metavar
	}
	return nil
}

func derefOrInvalid(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		return v.Elem()
	}
	return v
}

func describe(t reflect.Type) string {
	if t.Implements(reflect.TypeFor[describer]()) {
		return reflect.Zero(t).Interface().(describer).Description()
	}
	if reflect.PointerTo(t).Implements(reflect.TypeFor[describer]()) {
		return reflect.New(t).Interface().(describer).Description()
	}
	return ""
}
