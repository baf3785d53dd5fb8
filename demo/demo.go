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

// Package demo holds small Proba programs exercising the whole
// pipeline, with example-style tests showing their output.
package demo

import (
	"io"
	"os"

	"github.com/Konstantin-Maca/proba-lang/engine"
	"github.com/Konstantin-Maca/proba-lang/std"
)

// CounterSource builds an object that counts the bump messages it
// received and prints the total.
const CounterSource = `
at (let Counter copy Object) (
	let n 0;
	on : bump do (set n (n ++); n)
);
Counter bump; Counter bump; Counter bump;
Counter n println
`

// BranchSource drives the boolean then/else protocol.
const BranchSource = `
True then (1) else (2) println;
False then (1) else (2) println
`

// ArithmeticSource chains the numeric keyword methods.
const ArithmeticSource = `
2 + 3 println;
(10 - 4) * 7 println
`

// EqualitySource sends messages answered through the "==" protocol.
const EqualitySource = `
2 == 2 println;
2 == 3 println;
None dbg
`

// Run evaluates one Proba program against a fresh standard state,
// writing whatever its natives print to w. An exit interrupt counts
// as normal termination.
func Run(w io.Writer, src string) error {
	st := engine.New()
	st.SetOutput(w)
	if err := std.Bootstrap(st); err != nil {
		return err
	}
	_, err := engine.Run(st, "demo.proba", src)
	if i, ok := err.(*engine.Interrupt); ok &&
		(i.Kind == engine.Exit || i.Kind == engine.Return) {
		return nil
	}
	return err
}

// RunStdout is Run printing to standard output.
func RunStdout(src string) error {
	return Run(os.Stdout, src)
}
