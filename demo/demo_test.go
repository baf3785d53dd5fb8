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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This example shows a stateful prototype: the counter's field is
// shared by every bump activation through the prototype chain.
func Example_counter() {
	_ = RunStdout(CounterSource)
	// Output:
	// 3
}

// Booleans branch by answering one of their two message arguments.
func Example_branching() {
	_ = RunStdout(BranchSource)
	// Output:
	// 1
	// 2
}

func Example_arithmetic() {
	_ = RunStdout(ArithmeticSource)
	// Output:
	// 5
	// 42
}

// Equality is itself a message send, so numbers compare by payload
// while plain objects compare by identity.
func Example_equality() {
	_ = RunStdout(EqualitySource)
	// Output:
	// [[True]]
	// [[False]]
	// [[None]]
}

func TestDemosSucceed(t *testing.T) {
	for _, src := range []string{CounterSource, BranchSource, ArithmeticSource, EqualitySource} {
		var buf bytes.Buffer
		require.NoError(t, Run(&buf, src))
		assert.NotEmpty(t, buf.String())
	}
}

func BenchmarkCounterBump(b *testing.B) {
	var buf bytes.Buffer
	st, err := newBenchState(&buf)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if _, err := benchBump(st); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFreshState(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if _, err := newBenchState(&buf); err != nil {
			b.Fatal(err)
		}
	}
}
