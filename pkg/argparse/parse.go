// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

const (
	helpFlagShort = "-h"
	helpFlagLong  = "--help"
)

// Parse scans args against spec. On ErrHelp the returned Result carries
// HelpText; on other errors it carries the Usage of the scope that failed.
func Parse(spec *Spec, args []string) (*Result, error) {
	p := &parser{
		prog:    spec.Prog,
		scope:   spec,
		pending: slices.Clone(spec.Groups),
		res: &Result{
			Values:   make(map[string][]string),
			Commands: make(map[string]string),
		},
	}
	err := p.run(args)
	p.res.Usage = p.usage()
	if errors.Is(err, ErrHelp) {
		p.res.HelpText = p.res.Usage
	}
	return p.res, err
}

type parser struct {
	prog    string
	scope   *Spec
	pending []*Group // subcommand groups not yet selected, in order
	res     *Result
}

func (p *parser) run(args []string) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			if rest := args[i+1:]; len(rest) > 0 {
				return p.unknown(rest...)
			}
			return p.finish()
		case arg == helpFlagShort || arg == helpFlagLong:
			return ErrHelp
		case looksLikeFlag(arg):
			next, err := p.flag(args, i)
			if err != nil {
				return err
			}
			i = next
		default:
			if err := p.selectCommand(arg); err != nil {
				return err
			}
		}
	}
	return p.finish()
}

// flag consumes the flag at args[i] and its values, returning the index of
// the last consumed token.
func (p *parser) flag(args []string, i int) (int, error) {
	name, inline, hasInline := strings.Cut(args[i], "=")
	a := p.scope.Lookup(name)
	if a == nil {
		return i, p.unknown(args[i])
	}

	switch a.Action {
	case ActionStoreTrue, ActionStoreFalse:
		if hasInline {
			return i, &ArityError{Flag: a.Flag, Got: 1, Command: p.path()}
		}
		p.res.Values[a.Dest] = []string{strconv.FormatBool(a.Action == ActionStoreTrue)}
		return i, nil
	}

	var vals []string
	j := i + 1
	if hasInline {
		vals = []string{inline}
	} else {
		for j < len(args) && (a.Nargs.Max < 0 || len(vals) < a.Nargs.Max) {
			tok := args[j]
			if tok == "--" || looksLikeFlag(tok) {
				break
			}
			if len(vals) >= a.Nargs.Min && p.isCommand(tok) {
				break
			}
			vals = append(vals, tok)
			j++
		}
	}

	if len(vals) == 0 && a.Nargs.Min > 0 {
		return i, &MissingRequiredError{Names: []string{a.Flag}, Command: p.path()}
	}
	if len(vals) < a.Nargs.Min || (a.Nargs.Max >= 0 && len(vals) > a.Nargs.Max) {
		return i, &ArityError{Flag: a.Flag, Nargs: a.Nargs, Got: len(vals), Command: p.path()}
	}
	if len(a.Choices) > 0 {
		for _, v := range vals {
			if !slices.Contains(a.Choices, v) {
				return i, &InvalidChoiceError{Flag: a.Flag, Value: v, Choices: a.Choices, Command: p.path()}
			}
		}
	}
	if vals == nil {
		vals = []string{}
	}
	p.res.Values[a.Dest] = vals // last occurrence wins
	return j - 1, nil
}

// selectCommand switches into the subcommand named tok. Optional groups
// ahead of the matching one are skipped and keep their defaults.
func (p *parser) selectCommand(tok string) error {
	if len(p.pending) == 0 {
		return p.unknown(tok)
	}
	for k, g := range p.pending {
		c := g.Lookup(tok)
		if c == nil {
			if !g.Required {
				continue
			}
			return &InvalidChoiceError{Flag: g.title(), Value: tok, Choices: g.Names(), Command: p.path()}
		}
		if err := p.check(); err != nil {
			return err
		}
		p.res.Commands[g.Dest] = c.Name
		p.res.Command = append(p.res.Command, c.Name)
		p.scope = c.Spec
		p.pending = append(slices.Clone(c.Spec.Groups), p.pending[k+1:]...)
		return nil
	}
	g := p.pending[0]
	return &InvalidChoiceError{Flag: g.title(), Value: tok, Choices: g.Names(), Command: p.path()}
}

// check verifies the required flags of the current scope.
func (p *parser) check() error {
	var missing []string
	for _, a := range p.scope.Args {
		if _, ok := p.res.Values[a.Dest]; ok {
			continue
		}
		switch {
		case a.Required:
			missing = append(missing, a.Flag)
		case a.GroupRequired && a.Group != "" && p.res.Has(a.Group):
			missing = append(missing, a.Flag)
		}
	}
	if len(missing) > 0 {
		return &MissingRequiredError{Names: missing, Command: p.path()}
	}
	return nil
}

func (p *parser) finish() error {
	if err := p.check(); err != nil {
		return err
	}
	for _, g := range p.pending {
		if g.Required {
			return &MissingRequiredError{Names: []string{g.title()}, Group: true, Command: p.path()}
		}
	}
	return nil
}

func (p *parser) isCommand(tok string) bool {
	for _, g := range p.pending {
		if g.Lookup(tok) != nil {
			return true
		}
		if g.Required {
			break
		}
	}
	return false
}

func (p *parser) unknown(args ...string) error {
	return &UnknownArgumentError{Args: args, Command: p.path()}
}

func (p *parser) path() string {
	return strings.Join(p.res.Command, " ")
}

func (p *parser) usage() string {
	return render(p.prog, p.scope, p.res.Command, p.pending)
}

func (g *Group) title() string {
	if g.Title != "" {
		return g.Title
	}
	return g.Metavar()
}

// looksLikeFlag reports whether s is a flag rather than a value. Negative
// numbers are values.
func looksLikeFlag(s string) bool {
	return len(s) > 1 && s[0] == '-' && !isNumeric(s)
}

// isNumeric checks if a string represents a valid number (integer or float)
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}

	start := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		start = 1
	}

	hasDigit := false
	hasDot := false
	for i := start; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			hasDigit = true
		case s[i] == '.' && !hasDot:
			hasDot = true
		case (s[i] == 'e' || s[i] == 'E') && hasDigit && i+1 < len(s):
			// Exponent: the rest must be an optionally signed integer.
			rest := s[i+1:]
			if rest[0] == '-' || rest[0] == '+' {
				rest = rest[1:]
			}
			if rest == "" {
				return false
			}
			for j := 0; j < len(rest); j++ {
				if rest[j] < '0' || rest[j] > '9' {
					return false
				}
			}
			return true
		default:
			return false
		}
	}
	return hasDigit
}
