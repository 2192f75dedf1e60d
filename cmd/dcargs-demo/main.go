// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dcargs-demo exercises the dcargs library: it builds a command line
// from the Experiment struct, loads TOML defaults and round-trips the result
// through the YAML codec.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argparse"
	"github.com/kevin-thankyou-lin/dcargs/pkg/argspec"
	"github.com/kevin-thankyou-lin/dcargs/pkg/dcargs"
	"github.com/kevin-thankyou-lin/dcargs/pkg/fileutil"
	"github.com/kevin-thankyou-lin/dcargs/pkg/schema"
	"github.com/shayne/yargs"
	"golang.org/x/term"
)

const (
	progName     = "dcargs-demo"
	defaultsFile = "dcargs-demo.toml"
)

var (
	stdin        io.Reader = os.Stdin
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
	isTerminalFn           = term.IsTerminal
	getwd                  = os.Getwd
	now                    = time.Now
)

type globalFlagsParsed struct {
	Config  string `flag:"config" help:"TOML defaults file (DCARGS_CONFIG)"`
	Verbose bool   `flag:"verbose" help:"Log what dcargs resolves"`
	Out     string `flag:"out" help:"Write train output to FILE instead of stdout"`
	Force   bool   `flag:"force" help:"Overwrite --out without asking"`
}

type globalFlags struct {
	Config  string
	Verbose bool
	Out     string
	Force   bool
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlags{}, nil, err
	}
	flags := globalFlags{
		Config:  result.Flags.Config,
		Verbose: result.Flags.Verbose,
		Out:     result.Flags.Out,
		Force:   result.Flags.Force,
	}
	if flags.Config == "" {
		flags.Config = os.Getenv("DCARGS_CONFIG")
	}
	return flags, result.RemainingArgs, nil
}

// experimentOptions binds the dataset type parameter and wires logging.
func experimentOptions(g globalFlags) []dcargs.Option {
	opts := []dcargs.Option{
		dcargs.WithTypeParam("D", reflect.TypeFor[ImageData]()),
	}
	if g.Verbose {
		opts = append(opts, dcargs.WithLogf(log.Printf))
	}
	return opts
}

func main() {
	color.NoColor = !isTerminalFn(int(os.Stdout.Fd()))
	if err := run(context.Background(), os.Args[1:]); err != nil {
		printCLIError(stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string) error {
	g, remaining, err := parseGlobalFlags(args)
	if err != nil {
		return err
	}

	// train owns its flags and help text, so it is dispatched before yargs
	// gets a chance to render help for it.
	if len(remaining) > 0 && remaining[0] == "train" {
		return handleTrain(ctx, g, remaining[1:])
	}

	handlers := map[string]yargs.SubcommandHandler{
		"check": func(ctx context.Context, args []string) error {
			return handleCheck(ctx, g, stripCommand(args, "check"))
		},
		"inspect": func(ctx context.Context, args []string) error {
			return handleInspect(ctx, g, stripCommand(args, "inspect"))
		},
	}
	return yargs.RunSubcommandsWithGroups(ctx, remaining, buildHelpConfig(), globalFlagsParsed{}, handlers, nil)
}

func stripCommand(args []string, name string) []string {
	if len(args) > 0 && args[0] == name {
		return args[1:]
	}
	return args
}

func buildHelpConfig() yargs.HelpConfig {
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        progName,
			Description: "Build an Experiment from the command line, TOML defaults and YAML documents.",
			Examples: []string{
				progName + " train --name run1 adam --lr 3e-4",
				progName + " --config base.toml train --seed 7 sgd",
				progName + " --out run1.yaml train --name run1 sgd",
				progName + " check run1.yaml --dump",
				progName + " inspect",
			},
		},
		SubCommands: map[string]yargs.SubCommandInfo{
			"train": {
				Name:        "train",
				Description: "Parse Experiment flags and print the result as YAML",
				Usage:       "[FLAGS] {adam,sgd} [FLAGS]",
				Examples:    []string{progName + " train --help"},
			},
			"check": {
				Name:        "check",
				Description: "Decode an Experiment YAML document and summarize it",
				Usage:       "FILE [--dump]",
			},
			"inspect": {
				Name:        "inspect",
				Description: "List the flags generated for Experiment",
				Usage:       "[--all]",
			},
		},
	}
}

// loadDefaults returns the options that seed train from a TOML file. An
// explicit --config must exist; otherwise the file is looked up from the
// working directory upwards.
func loadDefaults(g globalFlags, opts []dcargs.Option) ([]dcargs.Option, error) {
	path := g.Config
	if path == "" {
		wd, err := getwd()
		if err != nil {
			return nil, err
		}
		found, err := dcargs.FindDefaults(wd, defaultsFile)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	def, err := dcargs.LoadDefaults[Experiment](path, opts...)
	if err != nil {
		return nil, err
	}
	if g.Verbose {
		log.Printf("using defaults from %s", path)
	}
	return []dcargs.Option{dcargs.WithDefault(def)}, nil
}

func handleTrain(_ context.Context, g globalFlags, args []string) error {
	opts := experimentOptions(g)
	defOpts, err := loadDefaults(g, opts)
	if err != nil {
		return err
	}
	opts = append(opts, defOpts...)
	opts = append(opts, dcargs.WithProg(progName+" train"))

	exp, err := dcargs.ParseArgs[Experiment](args, opts...)
	if err != nil {
		var ue *dcargs.UsageError
		if errors.Is(err, argparse.ErrHelp) && errors.As(err, &ue) {
			fmt.Fprint(stdout, ue.Usage)
			return nil
		}
		return err
	}
	doc, err := dcargs.ToYAML(exp, opts...)
	if err != nil {
		return err
	}
	if g.Out == "" {
		fmt.Fprint(stdout, doc)
		return nil
	}
	return writeOutput(g, []byte(doc))
}

// writeOutput stores doc at g.Out. A differing existing file is moved to a
// versioned backup name, after confirmation unless --force is set.
func writeOutput(g globalFlags, doc []byte) error {
	same, err := fileutil.Identical(g.Out, doc)
	if err != nil {
		return err
	}
	if same {
		fmt.Fprintf(stdout, "%s %s\n", color.GreenString("unchanged"), g.Out)
		return nil
	}
	if _, err := os.Stat(g.Out); err == nil {
		if !g.Force {
			ok, err := confirm(stdin, stdout, fmt.Sprintf("%s exists, overwrite?", g.Out))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: not overwritten", g.Out)
			}
		}
		backup := fileutil.BackupName(g.Out, now())
		if err := os.Rename(g.Out, backup); err != nil {
			return err
		}
		if g.Verbose {
			log.Printf("moved previous %s to %s", g.Out, backup)
		}
	}
	if err := fileutil.WriteFile(g.Out, doc, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s\n", color.GreenString("wrote"), g.Out)
	return nil
}

func confirm(r io.Reader, w io.Writer, msg string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", msg)

	var answer string
	_, err := fmt.Fscanln(r, &answer)
	if err != nil && err.Error() != "unexpected newline" && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.EqualFold(answer, "y"), nil
}

type checkFlagsParsed struct {
	Dump bool `flag:"dump" help:"Dump the decoded value"`
}

func handleCheck(_ context.Context, g globalFlags, args []string) error {
	result, err := yargs.ParseFlags[checkFlagsParsed](args)
	if err != nil {
		return err
	}
	if len(result.Args) != 1 {
		return errors.New("check takes exactly one FILE argument")
	}
	path := result.Args[0]
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	exp, err := dcargs.FromYAML[Experiment](string(b), experimentOptions(g)...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(stdout, "%s %s\n", color.GreenString("ok"), path)
	fmt.Fprint(stdout, summarize(exp))
	if result.Flags.Dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(stdout, exp)
	}
	return nil
}

func summarize(exp Experiment) string {
	var b strings.Builder
	optimizer := "none"
	switch {
	case exp.Optimizer.Adam != nil:
		optimizer = fmt.Sprintf("adam (lr=%g)", exp.Optimizer.Adam.LR)
	case exp.Optimizer.SGD != nil:
		optimizer = fmt.Sprintf("sgd (lr=%g, momentum=%g)", exp.Optimizer.SGD.LR, exp.Optimizer.SGD.Momentum)
	}
	decoder := "disabled"
	if exp.Decoder != nil {
		decoder = fmt.Sprintf("%d x %d", exp.Decoder.Layers, exp.Decoder.Hidden)
	}
	fmt.Fprintf(&b, "  name:      %s\n", exp.Name)
	fmt.Fprintf(&b, "  device:    %s\n", exp.Device)
	fmt.Fprintf(&b, "  encoder:   %d x %d %s\n", exp.Encoder.Layers, exp.Encoder.Hidden, exp.Encoder.Act)
	fmt.Fprintf(&b, "  decoder:   %s\n", decoder)
	fmt.Fprintf(&b, "  optimizer: %s\n", optimizer)
	if data, ok := exp.Data.(ImageData); ok {
		fmt.Fprintf(&b, "  data:      %s %dx%d\n", data.Root, data.Size[0], data.Size[1])
	}
	return b.String()
}

type inspectFlagsParsed struct {
	All bool `flag:"all" help:"Include subcommand flags"`
}

func handleInspect(_ context.Context, g globalFlags, args []string) error {
	result, err := yargs.ParseFlags[inspectFlagsParsed](args)
	if err != nil {
		return err
	}
	rec, err := schema.Resolve(reflect.TypeFor[Experiment](), schema.Options{
		TypeParams: map[string]reflect.Type{"D": reflect.TypeFor[ImageData]()},
	})
	if err != nil {
		return err
	}
	spec, err := argspec.Generate(rec, argspec.Info{Prog: progName + " train"})
	if err != nil {
		return err
	}
	if g.Verbose {
		log.Printf("%s: %d fields", rec.Name, countFields(rec))
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 3, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "FLAG\tNARGS\tDEFAULT\tCOMMAND")
	writeArgs(w, spec, "", result.Flags.All)
	return nil
}

func writeArgs(w io.Writer, spec *argparse.Spec, command string, all bool) {
	for _, a := range spec.Args {
		flag := a.Flag
		if a.Required || a.GroupRequired {
			flag = color.YellowString(flag)
		}
		def := strings.Join(a.Default, " ")
		switch {
		case !a.HasDefault && a.Required:
			def = "(required)"
		case !a.HasDefault:
			def = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", flag, a.Nargs, def, command)
	}
	if !all {
		return
	}
	for _, g := range spec.Groups {
		for _, c := range g.Commands {
			writeArgs(w, c.Spec, strings.TrimSpace(command+" "+c.Name), all)
		}
	}
}

func countFields(rec *schema.Record) int {
	n := 0
	rec.Walk(func(*schema.Field) { n++ })
	return n
}

func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ue *dcargs.UsageError
	if errors.As(err, &ue) {
		fmt.Fprint(w, ue.Usage)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
}

func exitCode(err error) int {
	var ue *dcargs.UsageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}
