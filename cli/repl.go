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

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/Konstantin-Maca/proba-lang/engine"
)

// repl reads statements line by line and evaluates them against the
// persistent state. Errors are printed and the loop continues; an
// exit interrupt or end of input ends the session.
func repl(st *engine.State, cfg *config) error {
	prompt := color.New(color.FgCyan)
	in := bufio.NewScanner(os.Stdin)
	for {
		prompt.Fprint(os.Stdout, "proba> ")
		if !in.Scan() {
			fmt.Fprintln(os.Stdout)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		answer, err := engine.Run(st, "<pit>", line)
		if err != nil {
			i, ok := err.(*engine.Interrupt)
			switch {
			case ok && i.Kind == engine.Exit:
				return nil
			case ok && i.Kind == engine.Return:
				answer = i.Value
			default:
				renderError(err)
				continue
			}
		}
		if _, err := st.Send(answer, "println"); err != nil {
			fmt.Fprintf(st.Output(), "[[Object#%d]]\n", answer)
		}
	}
}
