// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"reflect"
	"strings"
	"unicode"
)

// Key converts a Go identifier to snake_case.
//
//	Key("LearningRate") == "learning_rate"
//	Key("HTTPPort")     == "http_port"
//	Key("Field1")       == "field1"
func Key(goName string) string {
	runes := []rune(goName)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Hyphenate renders underscores as hyphens, the form used on the command line.
func Hyphenate(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

// TypeName returns the stable name of a type: its Go name without package
// path. Type arguments are kept with their own package paths dropped, so
// Pair[int] and Pair[string] stay distinct.
func TypeName(t reflect.Type) string {
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i < 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name[:i])
	rest := name[i:]
	for len(rest) > 0 {
		j := strings.IndexFunc(rest, isQualifiedNameRune)
		if j < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:j])
		rest = rest[j:]
		k := strings.IndexFunc(rest, func(r rune) bool { return !isQualifiedNameRune(r) })
		if k < 0 {
			k = len(rest)
		}
		ident := rest[:k]
		if dot := strings.LastIndexByte(ident, '.'); dot >= 0 {
			ident = ident[dot+1:]
		}
		b.WriteString(ident)
		rest = rest[k:]
	}
	return b.String()
}

// isQualifiedNameRune reports whether r can appear in a package-qualified
// type name such as github.com/a/b.Pair.
func isQualifiedNameRune(r rune) bool {
	return r == '_' || r == '.' || r == '/' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
