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

// proba is a tree-walking interpreter for the Proba language, a
// small prototype-based, message-passing language.
package main

import (
	"os"

	"github.com/Konstantin-Maca/proba-lang/cli"
)

func main() {
	if err := cli.Main(); err != nil {
		os.Exit(1)
	}
}
