// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"strings"
)

const helpColumn = 28

// Usage renders help for spec, reached through the subcommands in path.
func Usage(spec *Spec, path []string) string {
	return render(spec.Prog, spec, path, spec.Groups)
}

func render(prog string, spec *Spec, path []string, groups []*Group) string {
	var b strings.Builder

	b.WriteString("USAGE:\n")
	b.WriteString(fmt.Sprintf("    %s\n", usageLine(prog, spec, path, groups)))

	if spec.Description != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(spec.Description))
		b.WriteString("\n")
	}

	var required, optional []*Arg
	for _, a := range spec.Args {
		if a.Required {
			required = append(required, a)
		} else {
			optional = append(optional, a)
		}
	}

	if len(required) > 0 {
		b.WriteString("\nREQUIRED:\n")
		for _, a := range required {
			writeEntry(&b, flagSyntax(a), a.Help)
		}
	}

	b.WriteString("\nOPTIONS:\n")
	writeEntry(&b, helpFlagShort+", "+helpFlagLong, "Show help")
	for _, a := range optional {
		writeEntry(&b, flagSyntax(a), a.Help)
	}

	for _, g := range groups {
		b.WriteString("\n")
		if g.Title != "" {
			b.WriteString(fmt.Sprintf("COMMANDS (%s):\n", g.Title))
		} else {
			b.WriteString("COMMANDS:\n")
		}
		if g.Help != "" {
			b.WriteString(fmt.Sprintf("    %s\n", g.Help))
		}
		for _, c := range g.Commands {
			desc := firstLine(c.Help)
			if c.Name == g.Default {
				desc = strings.TrimSpace(desc + " (default)")
			}
			writeEntry(&b, c.Name, desc)
		}
	}
	return b.String()
}

func usageLine(prog string, spec *Spec, path []string, groups []*Group) string {
	var parts []string
	if prog != "" {
		parts = append(parts, prog)
	}
	parts = append(parts, path...)
	parts = append(parts, "[OPTIONS]")
	for _, a := range spec.Args {
		if a.Required {
			parts = append(parts, flagSyntax(a))
		}
	}
	for _, g := range groups {
		if g.Required {
			parts = append(parts, g.Metavar())
		} else {
			parts = append(parts, "["+g.Metavar()+"]")
		}
	}
	if len(groups) > 0 {
		parts = append(parts, "...")
	}
	return strings.Join(parts, " ")
}

// flagSyntax renders a flag with its metavars, e.g. "--tags STR [STR ...]".
func flagSyntax(a *Arg) string {
	if a.Action != ActionStore {
		return a.Flag
	}
	m := a.Metavar
	if m == "" {
		m = "VALUE"
	}
	if strings.Contains(m, " ") {
		return a.Flag + " " + m
	}
	var vals []string
	switch n := a.Nargs; {
	case n.Max < 0 && n.Min == 0:
		vals = []string{"[" + m + " ...]"}
	case n.Max < 0:
		for range n.Min {
			vals = append(vals, m)
		}
		vals = append(vals, "["+m+" ...]")
	default:
		for range max(n.Max, 1) {
			vals = append(vals, m)
		}
	}
	return a.Flag + " " + strings.Join(vals, " ")
}

func writeEntry(b *strings.Builder, name, desc string) {
	entry := "    " + name
	switch {
	case desc == "":
		b.WriteString(entry)
	case len(entry) >= helpColumn:
		b.WriteString(entry)
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-*s %s", helpColumn, "", desc))
	default:
		b.WriteString(fmt.Sprintf("%-*s %s", helpColumn, entry, desc))
	}
	b.WriteString("\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
