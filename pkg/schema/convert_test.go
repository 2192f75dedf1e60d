// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustBuild(t *testing.T, typ reflect.Type) *Descriptor {
	t.Helper()
	d, err := Build(typ)
	if err != nil {
		t.Fatalf("Build(%v) error = %v", typ, err)
	}
	return d
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name   string
		typ    reflect.Type
		tokens []string
		want   any
	}{
		{name: "string", typ: reflect.TypeFor[string](), tokens: []string{"hi"}, want: "hi"},
		{name: "negative int", typ: reflect.TypeFor[int8](), tokens: []string{"-5"}, want: int8(-5)},
		{name: "uint", typ: reflect.TypeFor[uint16](), tokens: []string{"7"}, want: uint16(7)},
		{name: "float", typ: reflect.TypeFor[float64](), tokens: []string{"1e-3"}, want: 0.001},
		{name: "bool", typ: reflect.TypeFor[bool](), tokens: []string{"true"}, want: true},
		{name: "duration", typ: reflect.TypeFor[time.Duration](), tokens: []string{"1m30s"}, want: 90 * time.Second},
		{name: "enum", typ: reflect.TypeFor[color](), tokens: []string{"GREEN"}, want: green},
		{name: "optional", typ: reflect.TypeFor[*int](), tokens: []string{"3"}, want: ptr(3)},
		{name: "slice", typ: reflect.TypeFor[[]int](), tokens: []string{"1", "2", "3"}, want: []int{1, 2, 3}},
		{name: "empty slice", typ: reflect.TypeFor[*[]int](), tokens: []string{}, want: &[]int{}},
		{name: "array", typ: reflect.TypeFor[[2]string](), tokens: []string{"a", "b"}, want: [2]string{"a", "b"}},
		{name: "set", typ: reflect.TypeFor[map[color]struct{}](), tokens: []string{"RED", "RED", "BLUE"}, want: map[color]struct{}{red: {}, blue: {}}},
		{name: "tuple", typ: reflect.TypeFor[pair](), tokens: []string{"x", "4"}, want: pair{Name: "x", Count: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := mustBuild(t, tt.typ).Parse(tt.tokens)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.tokens, err)
			}
			if diff := cmp.Diff(tt.want, v.Interface()); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseURL(t *testing.T) {
	v, err := mustBuild(t, reflect.TypeFor[url.URL]()).Parse([]string{"https://example.com/a?b=1"})
	if err != nil {
		t.Fatal(err)
	}
	u := v.Interface().(url.URL)
	if u.Host != "example.com" || u.Path != "/a" {
		t.Errorf("url = %+v", u)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		typ        reflect.Type
		tokens     []string
		wantChoice bool
	}{
		{name: "not an int", typ: reflect.TypeFor[int](), tokens: []string{"x"}},
		{name: "int overflow", typ: reflect.TypeFor[int8](), tokens: []string{"300"}},
		{name: "bad duration", typ: reflect.TypeFor[time.Duration](), tokens: []string{"soon"}},
		{name: "unknown enum", typ: reflect.TypeFor[color](), tokens: []string{"PINK"}, wantChoice: true},
		{name: "array count", typ: reflect.TypeFor[[2]int](), tokens: []string{"1"}},
		{name: "tuple count", typ: reflect.TypeFor[pair](), tokens: []string{"x"}},
		{name: "bad tuple position", typ: reflect.TypeFor[pair](), tokens: []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mustBuild(t, tt.typ).Parse(tt.tokens)
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			var ce *ChoiceError
			if got := errors.As(err, &ce); got != tt.wantChoice {
				t.Errorf("ChoiceError = %v, want %v (err %v)", got, tt.wantChoice, err)
			}
		})
	}
}

func TestParseScalarChoices(t *testing.T) {
	d := mustBuild(t, reflect.TypeFor[string]())
	d.Choices = []string{"fast", "slow"}
	if _, err := d.ParseScalar("slow"); err != nil {
		t.Errorf("ParseScalar(slow) error = %v", err)
	}
	_, err := d.ParseScalar("medium")
	var ce *ChoiceError
	if !errors.As(err, &ce) || ce.Value != "medium" {
		t.Errorf("ParseScalar(medium) error = %v, want ChoiceError", err)
	}
}

func TestParseDefault(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		tag  string
		want any
	}{
		{name: "scalar", typ: reflect.TypeFor[int](), tag: "4", want: 4},
		{name: "string with comma", typ: reflect.TypeFor[string](), tag: "a,b", want: "a,b"},
		{name: "list", typ: reflect.TypeFor[[]string](), tag: "a, b", want: []string{"a", "b"}},
		{name: "empty list", typ: reflect.TypeFor[[]string](), tag: "", want: []string{}},
		{name: "tuple", typ: reflect.TypeFor[pair](), tag: "n,2", want: pair{Name: "n", Count: 2}},
		{name: "optional", typ: reflect.TypeFor[*float64](), tag: "0.5", want: ptr(0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := mustBuild(t, tt.typ).ParseDefault(tt.tag)
			if err != nil {
				t.Fatalf("ParseDefault(%q) error = %v", tt.tag, err)
			}
			if diff := cmp.Diff(tt.want, v.Interface()); diff != "" {
				t.Errorf("ParseDefault mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := mustBuild(t, reflect.TypeFor[model]()).ParseDefault("x"); err == nil {
		t.Error("ParseDefault on a record succeeded")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		typ   reflect.Type
		value any
		want  []string
	}{
		{name: "float", typ: reflect.TypeFor[float64](), value: 0.5, want: []string{"0.5"}},
		{name: "enum", typ: reflect.TypeFor[color](), value: blue, want: []string{"BLUE"}},
		{name: "duration", typ: reflect.TypeFor[time.Duration](), value: 2 * time.Second, want: []string{"2s"}},
		{name: "nil optional", typ: reflect.TypeFor[*int](), value: (*int)(nil), want: nil},
		{name: "optional", typ: reflect.TypeFor[*int](), value: ptr(9), want: []string{"9"}},
		{name: "slice", typ: reflect.TypeFor[[]bool](), value: []bool{true, false}, want: []string{"true", "false"}},
		{name: "sorted set", typ: reflect.TypeFor[map[string]struct{}](), value: map[string]struct{}{"b": {}, "a": {}}, want: []string{"a", "b"}},
		{name: "tuple", typ: reflect.TypeFor[pair](), value: pair{Name: "n", Count: 1}, want: []string{"n", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustBuild(t, tt.typ).Format(reflect.ValueOf(tt.value))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Format mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClone(t *testing.T) {
	n := 1
	src := struct {
		P *int
		S []string
		M map[string]int
	}{P: &n, S: []string{"a"}, M: map[string]int{"k": 1}}

	got := Clone(reflect.ValueOf(src)).Interface().(struct {
		P *int
		S []string
		M map[string]int
	})
	if diff := cmp.Diff(src, got); diff != "" {
		t.Fatalf("Clone mismatch (-want +got):\n%s", diff)
	}

	sv := reflect.ValueOf(src.S)
	cs := Clone(sv).Interface().([]string)
	cs[0] = "b"
	if src.S[0] != "a" {
		t.Error("Clone shared slice storage")
	}
	cp := Clone(reflect.ValueOf(src.P)).Interface().(*int)
	if cp == src.P {
		t.Error("Clone shared pointer")
	}
}

func ptr[T any](v T) *T { return &v }
