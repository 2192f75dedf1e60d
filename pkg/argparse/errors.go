// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHelp is returned when -h or --help is given. Result.HelpText holds the
// rendered help.
var ErrHelp = errors.New("help requested")

// UnknownArgumentError is returned for flags and tokens the spec does not know.
type UnknownArgumentError struct {
	Args    []string
	Command string // subcommand path, empty at the root
}

func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("unrecognized arguments: %s", strings.Join(e.Args, " "))
}

// MissingRequiredError lists required flags, or a required subcommand group,
// that were not given.
type MissingRequiredError struct {
	Names   []string
	Group   bool
	Command string
}

func (e *MissingRequiredError) Error() string {
	if e.Group {
		return fmt.Sprintf("a subcommand is required: %s", strings.Join(e.Names, " "))
	}
	return fmt.Sprintf("the following arguments are required: %s", strings.Join(e.Names, ", "))
}

// InvalidChoiceError is returned when a value is outside its choice set.
type InvalidChoiceError struct {
	Flag    string // flag or group title
	Value   string
	Choices []string
	Command string
}

func (e *InvalidChoiceError) Error() string {
	quoted := make([]string, len(e.Choices))
	for i, c := range e.Choices {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("argument %s: invalid choice: %q (choose from %s)", e.Flag, e.Value, strings.Join(quoted, ", "))
}

// ConversionError is returned when a value cannot be converted to the
// field's type. It keeps the converter's error for verbose output.
type ConversionError struct {
	Flag    string
	Value   string
	Err     error
	Command string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("argument %s: %v", e.Flag, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ArityError is returned when a flag gets the wrong number of values.
type ArityError struct {
	Flag    string
	Nargs   Nargs
	Got     int
	Command string
}

func (e *ArityError) Error() string {
	if e.Nargs.Max == 0 {
		return fmt.Sprintf("argument %s: takes no value", e.Flag)
	}
	return fmt.Sprintf("argument %s: expected %s value(s), got %d", e.Flag, e.Nargs, e.Got)
}

// IsUserError reports whether err is caused by the command-line input, as
// opposed to a defect in the Spec.
func IsUserError(err error) bool {
	var (
		unknown *UnknownArgumentError
		missing *MissingRequiredError
		choice  *InvalidChoiceError
		convert *ConversionError
		arity   *ArityError
	)
	return errors.As(err, &unknown) ||
		errors.As(err, &missing) ||
		errors.As(err, &choice) ||
		errors.As(err, &convert) ||
		errors.As(err, &arity)
}
