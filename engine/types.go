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

// This file contains various type definitions.

import "github.com/Konstantin-Maca/proba-lang/lang"

// A Handle is an opaque reference to an object in the store. Handles
// are assigned monotonically and never reused within a run.
type Handle int

// Two handles are reserved: Root is the ultimate prototype and Global
// is the global scope.
const (
	Root   Handle = 0
	Global Handle = 1
)

// A ValueKind selects the arm of a Value.
type ValueKind int

// Only Ptr values are produced by the language surface; Int and Float
// back the payloads of primitive objects.
const (
	_ ValueKind = iota
	KindPtr
	KindInt
	KindFloat
)

// A Value is the payload of a field.
type Value struct {
	Kind  ValueKind
	Ptr   Handle
	Int   int64
	Float float64
}

// PtrValue returns a Value holding an object reference.
func PtrValue(h Handle) Value { return Value{Kind: KindPtr, Ptr: h} }

// IntValue returns a Value holding an integer payload.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }

// FloatValue returns a Value holding a float payload.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// A PatternKind selects the matching strategy of a method pattern.
type PatternKind int

// Kw matches a bare keyword name; Proto matches descendants of the
// anchor object; Eq matches through the anchor's "==" protocol.
const (
	_ PatternKind = iota
	Kw
	Proto
	Eq
)

// A Pattern is the left-hand side of a method definition.
type Pattern struct {
	Kind PatternKind
	// Name is the keyword for Kw patterns.
	Name string
	// Anchor is the prototype or equality anchor for Proto and Eq.
	Anchor Handle
	// Alias is the binding name of the message argument; empty when
	// the pattern is unaliased.
	Alias string
}

// KwPattern returns a keyword pattern.
func KwPattern(name string) Pattern { return Pattern{Kind: Kw, Name: name} }

// ProtoPattern returns a prototype pattern with an optional alias.
func ProtoPattern(anchor Handle, alias string) Pattern {
	return Pattern{Kind: Proto, Anchor: anchor, Alias: alias}
}

// EqPattern returns an equality pattern with an optional alias.
func EqPattern(anchor Handle, alias string) Pattern {
	return Pattern{Kind: Eq, Anchor: anchor, Alias: alias}
}

// Equivalent reports whether two patterns share a method-table key.
// The alias never participates: "on Int as i" and "on Int as j"
// replace one another.
func (p Pattern) Equivalent(o Pattern) bool {
	if p.Kind != o.Kind {
		return false
	}
	if p.Kind == Kw {
		return p.Name == o.Name
	}
	return p.Anchor == o.Anchor
}

// A Native is a method body implemented by the host. It runs against
// the engine state and answers a handle or an interrupt.
type Native func(st *State) (Handle, error)

// A Body is either a syntax subtree or a native function. Exactly one
// arm is set.
type Body struct {
	Tree lang.Node
	Fn   Native
}

// A Method is one entry of the method table.
type Method struct {
	Owner   Handle
	Pattern Pattern
	Body    Body
	// File is the source path the method was defined in. It is
	// recorded for state dumps; errors raised while the method runs
	// are located against the file currently being evaluated.
	File string
}

// A Field is one entry of the field table. Names are unique per
// owner.
type Field struct {
	Owner Handle
	Name  string
	Value Value
}

// object carries the two handles every object consists of: the
// prototype it was copied from and the scope that was topmost on the
// context stack when it was created.
type object struct {
	Parent  Handle
	Context Handle
}
