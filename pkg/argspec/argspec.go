// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argspec generates argument specifications from resolved records.
package argspec

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argparse"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
)

// Info describes the program a spec is generated for.
type Info struct {
	Prog        string
	Description string // falls back to the record's description
}

// NameCollisionError is returned when two fields render to the same flag
// within one parser scope.
type NameCollisionError struct {
	Flag    string
	Dests   []string
	Command string // variant path, empty at the root
}

func (e *NameCollisionError) Error() string {
	where := ""
	if e.Command != "" {
		where = " in " + e.Command
	}
	if len(e.Dests) == 1 {
		return fmt.Sprintf("flag %s%s for %s collides with a reserved flag", e.Flag, where, e.Dests[0])
	}
	return fmt.Sprintf("flag %s%s is generated for both %s", e.Flag, where, strings.Join(e.Dests, " and "))
}

// Dest returns the destination key of f: its path with hyphenated segments.
func Dest(f *schema.Field) string {
	return schema.Hyphenate(f.Path)
}

// Generate builds the argument specification of rec.
func Generate(rec *schema.Record, info Info) (*argparse.Spec, error) {
	spec := &argparse.Spec{Prog: info.Prog, Description: info.Description}
	if spec.Description == "" {
		spec.Description = rec.Doc
	}
	s := newScope(spec, "")
	if err := s.fill(rec, "", ""); err != nil {
		return nil, err
	}
	return spec, nil
}

// scope is one parser: the root or one variant.
type scope struct {
	spec    *argparse.Spec
	command string
	seen    map[string]string // flag -> dest
}

func newScope(spec *argparse.Spec, command string) *scope {
	return &scope{
		spec:    spec,
		command: command,
		seen: map[string]string{
			"--help": "",
			"-h":     "",
		},
	}
}

// fill adds the fields of rec. prefix is the scope-relative key path of rec;
// group is the dest of the innermost enclosing optional record.
func (s *scope) fill(rec *schema.Record, prefix, group string) error {
	for _, f := range rec.Fields {
		rel := join(prefix, f.Key)
		inner := f.Desc.Inner()
		optional := f.Desc.Kind == schema.KindOptional

		switch inner.Kind {
		case schema.KindRecord:
			g := group
			if optional {
				g = Dest(f)
			}
			if err := s.fill(inner.Record, rel, g); err != nil {
				return err
			}

		case schema.KindUnion:
			if err := s.union(f, rel, optional || group != ""); err != nil {
				return err
			}

		default:
			a := leaf(f, rel, group)
			if prev, ok := s.seen[a.Flag]; ok {
				dests := []string{a.Dest}
				if prev != "" {
					dests = []string{prev, a.Dest}
				}
				return &NameCollisionError{Flag: a.Flag, Dests: dests, Command: s.command}
			}
			s.seen[a.Flag] = a.Dest
			s.spec.Args = append(s.spec.Args, a)
		}
	}
	return nil
}

func (s *scope) union(f *schema.Field, rel string, optional bool) error {
	inner := f.Desc.Inner()
	g := &argparse.Group{
		Dest:     Dest(f),
		Title:    schema.Hyphenate(rel),
		Help:     f.Help,
		Required: !optional && f.DefaultVariant == "",
		Default:  f.DefaultVariant,
	}
	for _, v := range inner.Variants {
		sub := &argparse.Spec{Description: v.Record.Doc}
		path := strings.TrimSpace(s.command + " " + v.Name)
		if err := newScope(sub, path).fill(v.Record, "", ""); err != nil {
			return err
		}
		g.Commands = append(g.Commands, &argparse.Command{Name: v.Name, Help: v.Record.Doc, Spec: sub})
	}
	s.spec.Groups = append(s.spec.Groups, g)
	return nil
}

func leaf(f *schema.Field, rel, group string) *argparse.Arg {
	desc := f.Desc
	inner := desc.Inner()
	optional := desc.Kind == schema.KindOptional

	a := &argparse.Arg{
		Dest:    Dest(f),
		Flag:    flagName(rel),
		Nargs:   argparse.Nargs{Min: 1, Max: 1},
		Metavar: inner.Metavar,
		Help:    f.Help,
		Group:   group,
	}

	switch {
	case desc.Kind == schema.KindBool:
		a.Nargs = argparse.Nargs{}
		a.Metavar = ""
		a.Action = argparse.ActionStoreTrue
		if f.HasDefault && f.Default.Bool() {
			a.Action = argparse.ActionStoreFalse
			a.Flag = flagName(negate(rel))
		}
		a.Default = []string{fmt.Sprint(f.HasDefault && f.Default.Bool())}
		a.HasDefault = true
		return a

	case inner.Kind == schema.KindBool:
		a.Choices = []string{"true", "false"}

	case inner.Kind == schema.KindContainer:
		switch {
		case !inner.Arity.Variadic:
			a.Nargs = argparse.Nargs{Min: inner.Arity.N, Max: inner.Arity.N}
		case optional:
			a.Nargs = argparse.Nargs{Min: 0, Max: -1}
		default:
			a.Nargs = argparse.Nargs{Min: 1, Max: -1}
		}
		a.Choices = inner.Elem.Choices

	case inner.Kind == schema.KindTuple:
		a.Nargs = argparse.Nargs{Min: len(inner.Items), Max: len(inner.Items)}

	default:
		a.Choices = inner.Choices
	}

	required := !f.HasDefault && !optional
	if group != "" {
		a.GroupRequired = required
	} else {
		a.Required = required
	}

	if f.HasDefault {
		a.HasDefault = true
		a.Default = desc.Format(f.Default)
		a.Help = withDefault(a.Help, formatDefault(desc, a.Default))
	}
	return a
}

func formatDefault(desc *schema.Descriptor, tokens []string) string {
	if desc.Kind == schema.KindOptional && tokens == nil {
		return "None"
	}
	return shellquote.Join(tokens...)
}

func withDefault(help, def string) string {
	if help == "" {
		return "(default: " + def + ")"
	}
	return help + " (default: " + def + ")"
}

// negate turns "model.bias" into "model.no_bias".
func negate(rel string) string {
	if i := strings.LastIndexByte(rel, '.'); i >= 0 {
		return rel[:i+1] + "no_" + rel[i+1:]
	}
	return "no_" + rel
}

func flagName(rel string) string {
	return "--" + schema.Hyphenate(rel)
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
