// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.yaml")

	if err := WriteFile(dst, []byte("one\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := WriteFile(dst, []byte("two\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two\n" {
		t.Errorf("content = %q, want %q", b, "two\n")
	}
	st, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", st.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "out.yaml")
	if err := WriteFile(dst, []byte("x"), 0o644); err == nil {
		t.Fatal("WriteFile() error = nil, want error")
	}
}

func TestIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
		data string
		want bool
	}{
		{name: "same", path: path, data: "a: 1\n", want: true},
		{name: "different", path: path, data: "a: 2\n", want: false},
		{name: "missing", path: path + ".nope", data: "a: 1\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Identical(tt.path, []byte(tt.data))
			if err != nil {
				t.Fatalf("Identical() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Identical() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackupName(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		path string
		want string
	}{
		{path: "run.yaml", want: "run-20250102030405.yaml"},
		{path: "dir/run.yaml", want: filepath.Join("dir", "run-20250102030405.yaml")},
		{path: "run-20240101000000.yaml", want: "run-20250102030405.yaml"},
		{path: "run-2.yaml", want: "run-2-20250102030405.yaml"},
		{path: "noext", want: "noext-20250102030405"},
	}
	for _, tt := range tests {
		if got := BackupName(tt.path, now); got != tt.want {
			t.Errorf("BackupName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
