// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcargs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/fatih/color"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argparse"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argspec"
	"github.com/kevin-thankyou-lin/dcargs/pkg/instantiate"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
)

type (
	// OneOf marks a struct as a union of records. Every other field must be
	// a pointer to a record; exactly one is set.
	OneOf = schema.OneOf
	// Tuple marks a struct as a fixed sequence of scalars.
	Tuple = schema.Tuple
)

// osExit is swapped out in tests.
var osExit = os.Exit

// UsageError is a user input error together with the help text of the
// subcommand it occurred in.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Option configures Parse, ParseArgs, ToYAML and FromYAML.
type Option func(*options)

type options struct {
	args        []string
	argsSet     bool
	prog        string
	description string
	def         reflect.Value
	params      map[string]reflect.Type
	stdout      io.Writer
	stderr      io.Writer
	logf        func(format string, args ...any)
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) Option {
	return func(o *options) {
		o.args = args
		o.argsSet = true
	}
}

// WithProg sets the program name shown in usage.
func WithProg(prog string) Option {
	return func(o *options) { o.prog = prog }
}

// WithDescription sets the help description. The record's Description()
// method is used otherwise.
func WithDescription(desc string) Option {
	return func(o *options) { o.description = desc }
}

// WithDefault supplies an instance (or pointer to one) whose field values
// become the defaults of every flag.
func WithDefault(instance any) Option {
	return func(o *options) { o.def = reflect.ValueOf(instance) }
}

// WithTypeParam binds a `typeparam` name to a concrete type.
func WithTypeParam(name string, t reflect.Type) Option {
	return func(o *options) {
		if o.params == nil {
			o.params = make(map[string]reflect.Type)
		}
		o.params[name] = t
	}
}

// WithOutput redirects help and error output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithLogf sets a debug logger, e.g. log.Printf.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *options) { o.logf = logf }
}

func newOptions(opts []Option) *options {
	o := &options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logf:   func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	if !o.argsSet && len(os.Args) > 0 {
		o.args = os.Args[1:]
	}
	if o.prog == "" && len(os.Args) > 0 {
		o.prog = filepath.Base(os.Args[0])
	}
	return o
}

// Parse builds a T from the command line. Help requests print usage to
// stdout and exit 0; input errors print usage and the error to stderr and
// exit 2. Errors in the definition of T panic.
func Parse[T any](opts ...Option) T {
	o := newOptions(opts)
	v, err := parse[T](o)
	if err == nil {
		return v
	}

	var ue *UsageError
	switch {
	case errors.Is(err, argparse.ErrHelp) && errors.As(err, &ue):
		fmt.Fprint(o.stdout, ue.Usage)
		osExit(0)
	case errors.As(err, &ue):
		fmt.Fprint(o.stderr, ue.Usage)
		fmt.Fprintf(o.stderr, "\n%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), ue.Err)
		osExit(2)
	default:
		panic(err)
	}
	return v
}

// ParseArgs builds a T from args and returns errors instead of exiting.
// Help requests and input errors are returned as *UsageError; help matches
// errors.Is(err, argparse.ErrHelp).
func ParseArgs[T any](args []string, opts ...Option) (T, error) {
	o := newOptions(append(opts, WithArgs(args)))
	return parse[T](o)
}

func parse[T any](o *options) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	rec, err := schema.Resolve(t, schema.Options{TypeParams: o.params, Default: o.def})
	if err != nil {
		return zero, err
	}
	spec, err := argspec.Generate(rec, argspec.Info{Prog: o.prog, Description: o.description})
	if err != nil {
		return zero, err
	}
	o.logf("dcargs: %s: %d flags, %d subcommand groups", rec.Name, len(spec.Args), len(spec.Groups))

	res, err := argparse.Parse(spec, o.args)
	if err != nil {
		return zero, &UsageError{Err: err, Usage: res.Usage}
	}
	o.logf("dcargs: selected %v", res.Command)

	v, err := instantiate.Instantiate(rec, res)
	if err != nil {
		if argparse.IsUserError(err) {
			return zero, &UsageError{Err: err, Usage: res.Usage}
		}
		return zero, err
	}
	if t.Kind() == reflect.Pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v.Interface().(T), nil
}
