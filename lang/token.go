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

// Package lang turns Proba source text into a syntax tree. The
// pipeline has two stages: Scan produces a flat token stream and
// Build folds that stream into the tree consumed by the engine.
package lang

// A TokenKind classifies a scanned token.
type TokenKind int

// The token vocabulary. Words that are not keywords scan as TokName;
// numeric words scan as TokInt or TokFloat.
const (
	_ TokenKind = iota
	TokName
	TokInt
	TokFloat
	TokString
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	// TokSemi ends a statement within a queue.
	TokSemi
	TokHere
	TokMe
	TokCopy
	TokAt
	TokLet
	TokSet
	TokOn
	TokDo
	TokAs
	TokReturn
	TokRepeat
	TokImport
)

var keywords = map[string]TokenKind{
	"here":   TokHere,
	"me":     TokMe,
	"copy":   TokCopy,
	"at":     TokAt,
	"let":    TokLet,
	"set":    TokSet,
	"on":     TokOn,
	"do":     TokDo,
	"as":     TokAs,
	"return": TokReturn,
	"repeat": TokRepeat,
	"import": TokImport,
}

// A Token pairs a kind with its source line and, for valued kinds,
// its payload.
type Token struct {
	Kind TokenKind
	// Line is the 1-based source line the token starts on.
	Line int
	// Text holds the name for TokName and the unquoted contents for
	// TokString.
	Text string
	// Int and Float hold the parsed payloads of numeric tokens.
	Int   int64
	Float float64
}
