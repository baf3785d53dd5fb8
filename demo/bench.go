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

package demo

import (
	"io"

	"github.com/Konstantin-Maca/proba-lang/engine"
	"github.com/Konstantin-Maca/proba-lang/std"
)

// newBenchState bootstraps a state holding the counter object.
func newBenchState(w io.Writer) (*engine.State, error) {
	st := engine.New()
	st.SetOutput(w)
	if err := std.Bootstrap(st); err != nil {
		return nil, err
	}
	const setup = `
at (let Counter copy Object) (
	let n 0;
	on : bump do (set n (n ++); n)
);
`
	if _, err := engine.Run(st, "bench.proba", setup); err != nil {
		return nil, err
	}
	return st, nil
}

// benchBump sends one bump message.
func benchBump(st *engine.State) (engine.Handle, error) {
	return engine.Run(st, "bench.proba", "Counter bump")
}
