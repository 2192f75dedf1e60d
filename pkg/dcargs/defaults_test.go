// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcargs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type trainDefaults struct {
	Name    string
	Steps   int `default:"10"`
	Tags    []string
	Encoder block
	Start   start
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.toml")
	writeFile(t, path, `
name = "from-file"
tags = ["a", "b"]

[encoder]
size = 8

[start.checkpoint]
path = "/ckpt"
`)

	def, err := LoadDefaults[trainDefaults](path)
	if err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}
	want := trainDefaults{
		Name:    "from-file",
		Steps:   10,
		Tags:    []string{"a", "b"},
		Encoder: block{Size: 8},
		Start:   start{Checkpoint: &checkpoint{Path: "/ckpt"}},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	got, err := ParseArgs[trainDefaults]([]string{"--steps", "3"}, WithDefault(def))
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	want.Steps = 3
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaultsErrors(t *testing.T) {
	const required = "name = \"x\"\ntags = []\n"
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "nmae = \"x\"\n[start.scratch]\n", wantErr: "unknown keys: nmae"},
		{name: "unknown subcommand", content: required + "[start.resume]\n", wantErr: `unknown subcommand "resume"`},
		{name: "two subcommands", content: required + "[start.scratch]\n[start.checkpoint]\npath = \"p\"\n", wantErr: "want a table with one of"},
		{name: "bad value", content: required + "steps = \"many\"\n[start.scratch]\n", wantErr: "steps"},
		{name: "bad toml", content: "steps = \n", wantErr: "failed to parse"},
		{name: "missing subcommand", content: required, wantErr: "start: missing table"},
		{name: "missing required scalar", content: "tags = []\n[start.scratch]\n", wantErr: "name: missing required key"},
		{name: "missing required list", content: "name = \"x\"\n[start.scratch]\n", wantErr: "tags: missing required key"},
		{name: "missing nested required", content: required + "[start.checkpoint]\n", wantErr: "start.checkpoint.path: missing required key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "d.toml")
			writeFile(t, path, tt.content)
			_, err := LoadDefaults[trainDefaults](path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultsNestedRecordDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.toml")
	writeFile(t, path, "name = \"n\"\ntags = []\n[start.scratch]\n")
	def, err := LoadDefaults[trainDefaults](path)
	if err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}
	want := trainDefaults{Name: "n", Steps: 10, Tags: []string{}, Encoder: block{Size: 2}, Start: start{Scratch: &scratch{Seed: 1}}}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFindDefaults(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "dcargs.toml")
	writeFile(t, want, "name = \"x\"\n")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindDefaults(deep, "dcargs.toml")
	if err != nil {
		t.Fatalf("FindDefaults() error = %v", err)
	}
	if got != want {
		t.Errorf("FindDefaults() = %q, want %q", got, want)
	}

	_, err = FindDefaults(deep, "missing.toml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}
