// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamlcodec

import (
	"fmt"
	"reflect"
)

// TagCollisionError is returned when two types in one tree share a tag.
type TagCollisionError struct {
	Tag   string
	Types []reflect.Type
}

func (e *TagCollisionError) Error() string {
	return fmt.Sprintf("tag %s names both %v and %v", e.Tag, e.Types[0], e.Types[1])
}

// UnknownTypeTagError is returned when a document names a type that does
// not occur in the target tree.
type UnknownTypeTagError struct {
	Path string
	Tag  string
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("%s: unknown type tag %s", pathOrRoot(e.Path), e.Tag)
}

// ShapeMismatchError is returned when a node does not fit the field it
// decodes into.
type ShapeMismatchError struct {
	Path string
	Want string
	Got  string
	Err  error
}

func (e *ShapeMismatchError) Error() string {
	msg := fmt.Sprintf("%s: want %s, got %s", pathOrRoot(e.Path), e.Want, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShapeMismatchError) Unwrap() error {
	return e.Err
}

// VersionError is returned for documents written by an incompatible codec.
type VersionError struct {
	Version    string
	Constraint string
	Err        error
}

func (e *VersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid document version %q: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("document version %s does not satisfy %s", e.Version, e.Constraint)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}

func pathOrRoot(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}
