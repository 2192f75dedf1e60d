// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"reflect"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Name", "name"},
		{"Field1", "field1"},
		{"HiddenSize", "hidden_size"},
		{"LR", "lr"},
		{"HTTPServer", "http_server"},
		{"UserID", "user_id"},
		{"ID2Name", "id2_name"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		if got := Key(tt.input); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

type box[T any] struct{ V T }

func TestTypeName(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[adam](), "adam"},
		{reflect.TypeFor[box[int]](), "box[int]"},
		{reflect.TypeFor[box[adam]](), "box[adam]"},
		{reflect.TypeFor[box[[]*adam]](), "box[[]*adam]"},
		{reflect.TypeFor[box[map[string]box[int]]](), "box[map[string]box[int]]"},
		{reflect.TypeFor[box[time.Duration]](), "box[Duration]"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.typ); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestHyphenate(t *testing.T) {
	if got := Hyphenate("hidden_size"); got != "hidden-size" {
		t.Errorf("Hyphenate = %q, want %q", got, "hidden-size")
	}
}
