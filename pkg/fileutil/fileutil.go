// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fileutil writes generated documents to disk.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// WriteFile writes data to dst. The data goes to a temporary file in the
// same directory first, which is then renamed over dst, so readers never see
// a partial document.
func WriteFile(dst string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Identical reports whether the file at path holds exactly data. A missing
// file is never identical.
func Identical(path string, data []byte) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	want := sha256.Sum256(data)
	return bytes.Equal(h.Sum(nil), want[:]), nil
}

// Version returns a version string for t.
func Version(t time.Time) string {
	return t.Format("20060102150405")
}

var versionRe = regexp.MustCompile(`-\d{14}$`)

// BackupName returns path with the version of t inserted before the
// extension. An existing version suffix is replaced.
//
//	run.yaml          -> run-20250102030405.yaml
//	run-20240101000000.yaml -> run-20250102030405.yaml
func BackupName(path string, t time.Time) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	name := versionRe.ReplaceAllString(strings.TrimSuffix(base, ext), "")
	return filepath.Join(dir, name+"-"+Version(t)+ext)
}
