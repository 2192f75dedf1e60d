// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package instantiate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argparse"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argspec"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
)

type layer struct {
	Width int  `default:"4"`
	Bias  bool `default:"true"`
}

type adam struct {
	LR float64 `default:"0.001"`
}

type sgd struct {
	Momentum float64
	Nesterov bool
}

type optimizer struct {
	schema.OneOf
	Adam *adam
	SGD  *sgd
}

type job struct {
	Steps  int
	Tags   []string `default:"x"`
	Limit  *int
	Layer  layer
	Head   *layer
	Opt    optimizer
	Warmup *optimizer
}

func run(t *testing.T, def reflect.Value, args ...string) (job, error) {
	t.Helper()
	rec, err := schema.Resolve(reflect.TypeFor[job](), schema.Options{Default: def})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	spec, err := argspec.Generate(rec, argspec.Info{Prog: "job"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	res, err := argparse.Parse(spec, args)
	if err != nil {
		return job{}, err
	}
	v, err := Instantiate(rec, res)
	if err != nil {
		return job{}, err
	}
	return v.Interface().(job), nil
}

func TestInstantiate(t *testing.T) {
	three := 3
	tests := []struct {
		name string
		args []string
		want job
	}{
		{
			name: "defaults",
			args: []string{"--steps", "1", "adam"},
			want: job{Steps: 1, Tags: []string{"x"}, Layer: layer{Width: 4, Bias: true}, Opt: optimizer{Adam: &adam{LR: 0.001}}},
		},
		{
			name: "all flags",
			args: []string{"--steps", "2", "--tags", "a", "b", "--limit", "3", "--layer.width", "8", "--layer.no-bias", "sgd", "--momentum", "0.9", "--nesterov"},
			want: job{Steps: 2, Tags: []string{"a", "b"}, Limit: &three, Layer: layer{Width: 8}, Opt: optimizer{SGD: &sgd{Momentum: 0.9, Nesterov: true}}},
		},
		{
			name: "optional record present",
			args: []string{"--steps", "1", "--head.width", "2", "adam"},
			want: job{Steps: 1, Tags: []string{"x"}, Layer: layer{Width: 4, Bias: true}, Head: &layer{Width: 2, Bias: true}, Opt: optimizer{Adam: &adam{LR: 0.001}}},
		},
		{
			name: "switch without default left off",
			args: []string{"--steps", "1", "sgd", "--momentum", "0.2"},
			want: job{Steps: 1, Tags: []string{"x"}, Layer: layer{Width: 4, Bias: true}, Opt: optimizer{SGD: &sgd{Momentum: 0.2}}},
		},
		{
			name: "chained optional union",
			args: []string{"--steps", "1", "adam", "--lr", "0.1", "sgd", "--momentum", "0.5"},
			want: job{Steps: 1, Tags: []string{"x"}, Layer: layer{Width: 4, Bias: true}, Opt: optimizer{Adam: &adam{LR: 0.1}}, Warmup: &optimizer{SGD: &sgd{Momentum: 0.5}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, reflect.Value{}, tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInstantiateDefaultInstance(t *testing.T) {
	def := job{
		Steps: 5,
		Tags:  []string{"d"},
		Layer: layer{Width: 1},
		Opt:   optimizer{SGD: &sgd{Momentum: 0.7}},
		Head:  &layer{Width: 9, Bias: true},
	}

	got, err := run(t, reflect.ValueOf(def))
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if diff := cmp.Diff(def, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got.Head == def.Head || &got.Tags[0] == &def.Tags[0] {
		t.Error("result shares storage with the default instance")
	}

	got, err = run(t, reflect.ValueOf(def), "--steps", "6")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Steps != 6 || got.Opt.SGD == nil || got.Opt.SGD.Momentum != 0.7 {
		t.Errorf("got %+v", got)
	}
}

func TestInstantiateErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "conversion",
			args: []string{"--steps", "many", "adam"},
			check: func(t *testing.T, err error) {
				var e *argparse.ConversionError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want ConversionError", err)
				}
				if e.Flag != "--steps" || e.Value != "many" {
					t.Errorf("got %s %q", e.Flag, e.Value)
				}
			},
		},
		{
			name: "conversion inside variant",
			args: []string{"--steps", "1", "adam", "--lr", "fast"},
			check: func(t *testing.T, err error) {
				var e *argparse.ConversionError
				if !errors.As(err, &e) || e.Flag != "--lr" {
					t.Fatalf("error = %v, want ConversionError for --lr", err)
				}
			},
		},
		{
			name: "partial optional record",
			args: []string{"--steps", "1", "--head.no-bias", "adam"},
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Fatalf("error = %v, want nil (head.width has a default)", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, reflect.Value{}, tt.args...)
			tt.check(t, err)
		})
	}
}

func TestInstantiateMissingUnion(t *testing.T) {
	rec, err := schema.Resolve(reflect.TypeFor[job](), schema.Options{})
	if err != nil {
		t.Fatal(err)
	}
	res := &argparse.Result{
		Values:   map[string][]string{"steps": {"1"}},
		Commands: map[string]string{},
	}
	_, err = Instantiate(rec, res)
	var e *argparse.MissingRequiredError
	if !errors.As(err, &e) || !e.Group {
		t.Fatalf("error = %v, want group MissingRequiredError", err)
	}
}
