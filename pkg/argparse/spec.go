// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"strings"
)

// Action is what a flag does when it is present.
type Action int

const (
	ActionStore      Action = iota // consume values
	ActionStoreTrue                // switch, records "true"
	ActionStoreFalse               // switch, records "false"
)

// Nargs bounds the number of values a flag consumes.
type Nargs struct {
	Min int
	Max int // negative means unbounded
}

// String describes the bound, e.g. "1", "2", "at least 1".
func (n Nargs) String() string {
	switch {
	case n.Max < 0 && n.Min == 0:
		return "0 or more"
	case n.Max < 0:
		return fmt.Sprintf("at least %d", n.Min)
	case n.Min == n.Max:
		return fmt.Sprint(n.Min)
	}
	return fmt.Sprintf("%d-%d", n.Min, n.Max)
}

// Arg is one flag.
type Arg struct {
	Dest    string // key in Result.Values
	Flag    string // e.g. "--model.no-bias"
	Action  Action
	Nargs   Nargs
	Metavar string
	Choices []string
	Help    string

	Required   bool
	Default    []string
	HasDefault bool

	// Group is the destination of the enclosing optional record, if any.
	// When any flag below Group is present, every GroupRequired flag of the
	// group must be present as well.
	Group         string
	GroupRequired bool
}

// Group is a set of mutually exclusive subcommands.
type Group struct {
	Dest     string // key in Result.Commands
	Title    string
	Help     string
	Required bool
	Default  string // preselected command name
	Commands []*Command
}

// Command is one subcommand of a Group.
type Command struct {
	Name string
	Help string
	Spec *Spec
}

// Spec is a parser scope: the root command or one subcommand.
type Spec struct {
	Prog        string
	Description string
	Args        []*Arg
	Groups      []*Group
}

// Lookup returns the arg registered under flag ("--name").
func (s *Spec) Lookup(flag string) *Arg {
	for _, a := range s.Args {
		if a.Flag == flag {
			return a
		}
	}
	return nil
}

// Lookup returns the command with the given name.
func (g *Group) Lookup(name string) *Command {
	for _, c := range g.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns command names in declaration order.
func (g *Group) Names() []string {
	names := make([]string, len(g.Commands))
	for i, c := range g.Commands {
		names[i] = c.Name
	}
	return names
}

// Metavar renders the group as "{a,b}".
func (g *Group) Metavar() string {
	return "{" + strings.Join(g.Names(), ",") + "}"
}

// Result holds raw values after a successful parse.
type Result struct {
	// Values maps Arg.Dest to the tokens given on the command line. Switches
	// record "true" or "false". Absent flags have no entry.
	Values map[string][]string
	// Commands maps Group.Dest to the selected command name.
	Commands map[string]string
	// Command lists selected command names in order.
	Command []string

	// Usage is the help text of the scope where parsing stopped.
	Usage string
	// HelpText is set when ErrHelp is returned.
	HelpText string
}

// Has reports whether dest or anything below it was given.
func (r *Result) Has(dest string) bool {
	if _, ok := r.Values[dest]; ok {
		return true
	}
	prefix := dest + "."
	for k := range r.Values {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	for k := range r.Commands {
		if k == dest || strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
