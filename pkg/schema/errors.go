// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// UnsupportedShapeError is returned when a type cannot be modeled as a field.
type UnsupportedShapeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("unsupported type %v: %s", e.Type, e.Reason)
}

// UnboundTypeVariableError is returned when a `typeparam` field names a type
// parameter with no binding.
type UnboundTypeVariableError struct {
	Name string
}

func (e *UnboundTypeVariableError) Error() string {
	return fmt.Sprintf("type parameter %s is not bound", e.Name)
}

// FieldError identifies the field whose resolution failed.
type FieldError struct {
	Path string // dotted field path, e.g. "model.encoder.layers"
	Type reflect.Type
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s (%v): %v", e.Path, e.Type, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// DefaultVariantError is returned when a default instance does not select
// exactly one arm of a union.
type DefaultVariantError struct {
	Path  string
	Armed []string // names of the non-nil arms
}

func (e *DefaultVariantError) Error() string {
	if len(e.Armed) == 0 {
		return fmt.Sprintf("default for union %s selects no variant", e.Path)
	}
	return fmt.Sprintf("default for union %s selects %d variants (%s), want exactly one",
		e.Path, len(e.Armed), strings.Join(e.Armed, ", "))
}

// ChoiceError is returned by Parse when a token is outside the choice set.
type ChoiceError struct {
	Value   string
	Choices []string
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("invalid choice %q (choose from %s)", e.Value, strings.Join(e.Choices, ", "))
}

func unsupported(t reflect.Type, format string, args ...any) error {
	return &UnsupportedShapeError{Type: t, Reason: fmt.Sprintf(format, args...)}
}
