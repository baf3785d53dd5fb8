// Copyright 2019 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License. See the AUTHORS file
// for names of contributors.

// Package cli contains the command-line surface of the interpreter.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Konstantin-Maca/proba-lang/engine"
	"github.com/Konstantin-Maca/proba-lang/lang"
	"github.com/Konstantin-Maca/proba-lang/std"
)

// buildID is set by a linker flag.
var buildID = "dev"

// defaultSource is run when no positional file is given.
const defaultSource = "main.proba"

type config struct {
	debugState   bool
	debugAnswer  bool
	debugContext bool
	pit          bool
	// Short aliases for the debug flags.
	ds bool
	da bool
	dc bool
	// reported is set once an error has been rendered, so Main does
	// not print it a second time.
	reported bool
}

func (c *config) stateOn() bool   { return c.debugState || c.ds }
func (c *config) answerOn() bool  { return c.debugAnswer || c.da }
func (c *config) contextOn() bool { return c.debugContext || c.dc }

// Main is the entry point for the proba interpreter. It is invoked
// from a main() method in the top-level package.
func Main() error {
	var cfg config
	rootCmd := &cobra.Command{
		Use:   "proba [source-file]",
		Short: `proba is a tree-walking interpreter for the Proba language.`,
		Example: `
proba program.proba
  Evaluate a source file.

proba --pit
  Start an interactive session.
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&cfg, args)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&cfg.debugState, "debug-state", false,
		"dump the final runtime state to stderr")
	f.BoolVar(&cfg.debugAnswer, "debug-answer", false,
		"print the program's answer")
	f.BoolVar(&cfg.debugContext, "debug-context", false,
		"trace context pushes, dispatch, and collection to stderr")
	f.BoolVar(&cfg.pit, "pit", false,
		"start an interactive session instead of running a file")
	f.BoolVar(&cfg.ds, "ds", false, "alias for --debug-state")
	f.BoolVar(&cfg.da, "da", false, "alias for --debug-answer")
	f.BoolVar(&cfg.dc, "dc", false, "alias for --debug-context")
	for _, name := range []string{"ds", "da", "dc"} {
		_ = f.MarkHidden(name)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("proba version %s; %s\n", buildID, runtime.Version())
			},
		})

	if err := rootCmd.Execute(); err != nil {
		if !cfg.reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

func run(cfg *config, args []string) error {
	st := engine.New()
	if cfg.contextOn() {
		st.SetLogger(traceLogger())
	}
	if err := std.Bootstrap(st); err != nil {
		return err
	}

	path := defaultSource
	if len(args) == 1 {
		path = args[0]
	}
	st.SetSearchPath(filepath.Dir(path), ".", os.Getenv("PROBA_LIB"))

	if cfg.pit {
		return repl(st, cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", path)
	}
	answer, err := engine.Run(st, path, string(data))
	if err != nil {
		if i, ok := err.(*engine.Interrupt); ok &&
			(i.Kind == engine.Exit || i.Kind == engine.Return) {
			// The interrupt's payload is the program's answer.
			answer = i.Value
		} else {
			cfg.reported = true
			renderError(err)
			return err
		}
	}

	if cfg.answerOn() {
		fmt.Fprint(st.Output(), "Answer: ")
		if _, err := st.Send(answer, "println"); err != nil {
			fmt.Fprintf(st.Output(), "[[Object#%d]]\n", answer)
		}
	}
	if cfg.stateOn() {
		pretty.Fprintf(os.Stderr, "%# v\n", st.Snapshot())
	}
	return nil
}

// renderError prints one human-readable line for a failed run.
func renderError(err error) {
	msg := err.Error()
	if se, ok := err.(*lang.SyntaxError); ok {
		msg = fmt.Sprintf("Syntax error on line %d: %s", se.Line, se.Msg)
	}
	color.New(color.FgRed).Fprintln(os.Stderr, msg)
}

// traceLogger builds the logr sink backing --debug-context.
func traceLogger() logr.Logger {
	l := funcr.New(func(prefix, args string) {
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: 1})
	return l.WithName("engine")
}
