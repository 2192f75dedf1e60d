// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package yamlcodec encodes records as tagged YAML documents.
//
// Records are mappings tagged !record:<TypeName>, enums are scalars tagged
// !enum:<TypeName>, and a union is written as the tagged record of its
// selected arm. Containers and tuples are sequences; nil optionals are null.
// Decoding selects records by tag only, so a document keeps working when
// two variants have the same fields.
package yamlcodec

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Version is written into the header of every document.
const Version = "1.0.0"

// compatibleVersions is the range of document versions this codec reads.
const compatibleVersions = "^1"

var headerRE = regexp.MustCompile(`(?m)^#\s*dcargs document v(\S+?),`)

// Codec encodes and decodes records.
type Codec struct {
	// TypeParams binds `typeparam` fields.
	TypeParams map[string]reflect.Type
	// Now stamps the header; time.Now when nil.
	Now func() time.Time
}

// Marshal encodes v with the zero Codec.
func Marshal(v any) ([]byte, error) {
	return Codec{}.Marshal(v)
}

// Unmarshal decodes data into out with the zero Codec.
func Unmarshal(data []byte, out any) error {
	return Codec{}.Unmarshal(data, out)
}

// Marshal encodes v, a record value or a pointer to one.
func (c Codec) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.New("yamlcodec: cannot encode a nil record")
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, errors.New("yamlcodec: cannot encode nil")
	}
	rec, _, err := c.resolve(rv.Type())
	if err != nil {
		return nil, err
	}
	root, err := (&encoder{}).record(rec, rv)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# dcargs document v%s, generated at %s.\n", Version, now().UTC().Format(time.RFC3339))
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("yamlcodec: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yamlcodec: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into out, a non-nil pointer to a record.
func (c Codec) Unmarshal(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("yamlcodec: Unmarshal needs a non-nil pointer, got %T", out)
	}
	if err := checkVersion(data); err != nil {
		return err
	}
	rec, tags, err := c.resolve(rv.Elem().Type())
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("yamlcodec: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &ShapeMismatchError{Want: "a document", Got: "empty input"}
	}
	v, err := (&decoder{tags: tags}).record(rec, doc.Content[0], "")
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

func (c Codec) resolve(t reflect.Type) (*schema.Record, map[string]reflect.Type, error) {
	rec, err := schema.Resolve(t, schema.Options{TypeParams: c.TypeParams})
	if err != nil {
		return nil, nil, err
	}
	tags, err := collectTags(rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, tags, nil
}

// checkVersion validates the header version, if the document has one.
func checkVersion(data []byte) error {
	m := headerRE.FindSubmatch(data)
	if m == nil {
		return nil
	}
	raw := string(m[1])
	v, err := semver.NewVersion(raw)
	if err != nil {
		return &VersionError{Version: raw, Constraint: compatibleVersions, Err: err}
	}
	constraint, err := semver.NewConstraint(compatibleVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return &VersionError{Version: raw, Constraint: compatibleVersions}
	}
	return nil
}

// collectTags maps every record and enum tag in rec's tree to its type.
func collectTags(rec *schema.Record) (map[string]reflect.Type, error) {
	tags := make(map[string]reflect.Type)
	add := func(tag string, t reflect.Type) error {
		if prev, ok := tags[tag]; ok && prev != t {
			return &TagCollisionError{Tag: tag, Types: []reflect.Type{prev, t}}
		}
		tags[tag] = t
		return nil
	}

	var visit func(r *schema.Record) error
	visit = func(r *schema.Record) error {
		if err := add(recordTag(r), r.Type); err != nil {
			return err
		}
		for _, f := range r.Fields {
			for _, d := range scalarsOf(f.Desc) {
				if d.Kind == schema.KindEnum {
					if err := add(enumTag(d.Type), d.Type); err != nil {
						return err
					}
				}
			}
			inner := f.Desc.Inner()
			switch inner.Kind {
			case schema.KindRecord:
				if err := visit(inner.Record); err != nil {
					return err
				}
			case schema.KindUnion:
				for _, v := range inner.Variants {
					if err := visit(v.Record); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if err := visit(rec); err != nil {
		return nil, err
	}
	return tags, nil
}

// scalarsOf returns the scalar descriptors reachable from d.
func scalarsOf(d *schema.Descriptor) []*schema.Descriptor {
	d = d.Inner()
	switch d.Kind {
	case schema.KindContainer:
		return []*schema.Descriptor{d.Elem}
	case schema.KindTuple:
		return d.Items
	case schema.KindPrimitive, schema.KindBool, schema.KindEnum:
		return []*schema.Descriptor{d}
	}
	return nil
}

func recordTag(r *schema.Record) string {
	return "!record:" + r.Name
}

func enumTag(t reflect.Type) string {
	return "!enum:" + schema.TypeName(t)
}
