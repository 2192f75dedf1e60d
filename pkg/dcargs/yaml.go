// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcargs

import (
	"github.com/kevin-thankyou-lin/dcargs/pkg/yamlcodec"
)

// ToYAML encodes a record as a tagged YAML document.
func ToYAML(instance any, opts ...Option) (string, error) {
	o := newOptions(opts)
	b, err := yamlcodec.Codec{TypeParams: o.params}.Marshal(instance)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromYAML decodes a document written by ToYAML.
func FromYAML[T any](text string, opts ...Option) (T, error) {
	o := newOptions(opts)
	var out T
	err := yamlcodec.Codec{TypeParams: o.params}.Unmarshal([]byte(text), &out)
	return out, err
}
