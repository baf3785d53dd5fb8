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

package engine

import "github.com/Konstantin-Maca/proba-lang/lang"

// Run scans, builds, and evaluates one source text against the
// state. The file path locates errors and method definitions while
// the text runs; the previous path is restored afterwards.
func Run(st *State, file, src string) (Handle, error) {
	tokens, err := lang.Scan(src)
	if err != nil {
		return 0, err
	}
	tree, err := lang.Build(tokens)
	if err != nil {
		return 0, err
	}
	prev := st.file
	st.file = file
	defer func() { st.file = prev }()
	return st.Exec(tree)
}
