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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The evaluator runs here against a bare state: only Root, Global,
// and the Object field exist. Programs that need primitives are
// covered by the std package tests.

func mustRun(t *testing.T, st *State, src string) Handle {
	t.Helper()
	h, err := Run(st, "test.proba", src)
	require.NoError(t, err)
	return h
}

func runErr(t *testing.T, st *State, src string) *Interrupt {
	t.Helper()
	_, err := Run(st, "test.proba", src)
	require.Error(t, err)
	i, ok := err.(*Interrupt)
	require.True(t, ok, "expected an interrupt, got %v", err)
	return i
}

func TestExecHere(t *testing.T) {
	st := New()
	assert.Equal(t, Global, mustRun(t, st, "here"))
}

func TestExecMeWithoutActivation(t *testing.T) {
	st := New()
	assert.Equal(t, Global, mustRun(t, st, "me"))
}

func TestExecLetAndName(t *testing.T) {
	a := assert.New(t)
	st := New()
	h := mustRun(t, st, "let x copy Object; x")
	a.True(st.Exists(h))
	parent, _ := st.Parent(h)
	a.Equal(Root, parent)
	_, v, ok := st.GetField(Global, "x")
	a.True(ok)
	a.Equal(PtrValue(h), v)
}

func TestExecUndefinedName(t *testing.T) {
	st := New()
	i := runErr(t, st, "nope")
	assert.Equal(t, RuntimeError, i.Kind)
	assert.Contains(t, i.Msg, "undefined")
	assert.Equal(t, 1, i.Line)
	assert.Equal(t, "test.proba", i.File)
}

func TestExecSetRequiresField(t *testing.T) {
	a := assert.New(t)
	st := New()
	i := runErr(t, st, "set x copy Object")
	a.Contains(i.Msg, "no field with name x")

	mustRun(t, st, "let x copy Object; set x copy Object")
}

// Set walks up the owner chain: mutating an inherited field writes
// to the owner that defines it.
func TestExecSetWalksOwners(t *testing.T) {
	a := assert.New(t)
	st := New()
	mustRun(t, st, "let P copy Object; at P let x copy Object; let C copy P; at C set x copy Object")
	c := ptrField(t, st, Global, "C")
	p := ptrField(t, st, Global, "P")
	owner, _, ok := st.GetField(c, "x")
	a.True(ok)
	a.Equal(p, owner)
}

func ptrField(t *testing.T, st *State, owner Handle, name string) Handle {
	t.Helper()
	_, v, ok := st.GetField(owner, name)
	require.True(t, ok)
	require.Equal(t, KindPtr, v.Kind)
	return v.Ptr
}

func TestExecEmptyQueue(t *testing.T) {
	st := New()
	i := runErr(t, st, "at Object ()")
	assert.Contains(t, i.Msg, "empty block of code")
}

func TestExecQueueAnswersLast(t *testing.T) {
	st := New()
	h := mustRun(t, st, "let a copy Object; let b copy Object; (a; b)")
	assert.Equal(t, ptrField(t, st, Global, "b"), h)
}

func TestExecAtEvaluatesInContext(t *testing.T) {
	a := assert.New(t)
	st := New()
	mustRun(t, st, "let X copy Object; at X let inner copy Object")
	x := ptrField(t, st, Global, "X")
	owner, _, ok := st.GetField(x, "inner")
	a.True(ok)
	a.Equal(x, owner)
	// The field landed on X, not on the global scope.
	_, _, ok = st.GetField(Global, "inner")
	a.False(ok)
}

// The sweep at a quick context's exit reclaims the block scope and
// the activation scope of the method it called, while the answer
// survives via the white list.
func TestExecQuickContextCollectsScopes(t *testing.T) {
	a := assert.New(t)
	st := New()
	mustRun(t, st, "let X copy Object; at X on : hi do me")
	before := len(st.objects)
	h := mustRun(t, st, "{X hi}")
	a.Equal(ptrField(t, st, Global, "X"), h)
	a.Equal(before, len(st.objects))
}

func TestExecOnDoAndKeywordSend(t *testing.T) {
	a := assert.New(t)
	st := New()
	h := mustRun(t, st, `
		let X copy Object;
		at X (let v copy Object; on : answer do v);
		X answer
	`)
	x := ptrField(t, st, Global, "X")
	a.Equal(ptrField(t, st, x, "v"), h)
}

// Methods dispatch against the recipient's prototype chain and bind
// the message under the pattern alias.
func TestExecPrototypeDispatch(t *testing.T) {
	a := assert.New(t)
	st := New()
	h := mustRun(t, st, `
		let X copy Object;
		at X on Object as o do o;
		let msg copy Object;
		X msg
	`)
	a.Equal(ptrField(t, st, Global, "msg"), h)
}

func TestExecDispatchFailure(t *testing.T) {
	st := New()
	i := runErr(t, st, "let X copy Object; let m copy Object; X m")
	assert.Contains(t, i.Msg, "failed to match method")
}

// Scenario: reading a field of another object succeeds when the
// reader is related to the field owner's creation context.
func TestExecScopeAccessGranted(t *testing.T) {
	a := assert.New(t)
	st := New()
	h := mustRun(t, st, "let X copy Object; at X let secret copy Object; X secret")
	x := ptrField(t, st, Global, "X")
	a.Equal(ptrField(t, st, x, "secret"), h)
}

// Scenario: reading a field owned by an object created inside a
// foreign scope violates the access rule.
func TestExecScopeAccessDenied(t *testing.T) {
	st := New()
	i := runErr(t, st, `
		let A copy Object;
		at A (let B copy Object; at B let s copy Object);
		A B s
	`)
	assert.Equal(t, RuntimeError, i.Kind)
	assert.Contains(t, i.Msg, "can not access field s")
}

func TestExecLetAccessDenied(t *testing.T) {
	st := New()
	// B was created inside A's scope; defining on it from the global
	// scope is rejected.
	i := runErr(t, st, `
		let A copy Object;
		at A let B copy Object;
		at (A B) let x copy Object
	`)
	assert.Contains(t, i.Msg, "can not define a field")
}

func TestExecReturnUnwindsOneActivation(t *testing.T) {
	a := assert.New(t)
	st := New()
	// The return inside the method body stops the body; the
	// statement after the send still runs.
	h := mustRun(t, st, `
		let X copy Object;
		at X on Object as o do (return o; X);
		let msg copy Object;
		X msg;
		let after copy Object;
		after
	`)
	a.Equal(ptrField(t, st, Global, "after"), h)
}

func TestExecBareReturnAnswersRecipient(t *testing.T) {
	a := assert.New(t)
	st := New()
	h := mustRun(t, st, `
		let X copy Object;
		at X on Object do (return);
		let msg copy Object;
		X msg
	`)
	a.Equal(ptrField(t, st, Global, "X"), h)
}

func TestExecReturnAtTopLevel(t *testing.T) {
	st := New()
	i := runErr(t, st, "return here")
	assert.Equal(t, Return, i.Kind)
	assert.Equal(t, Global, i.Value)
}

// Repeat restarts the body of the nearest activation. The native
// body flips a switch on the first pass so the loop terminates.
func TestExecRepeatRestartsBody(t *testing.T) {
	a := assert.New(t)
	st := New()
	owner, _ := st.Copy(Root)
	passes := 0
	body := Body{Fn: func(st *State) (Handle, error) {
		passes++
		if passes < 3 {
			return 0, &Interrupt{Kind: Repeat}
		}
		return st.Recipient(), nil
	}}
	h, err := st.invoke(owner, body, "", owner)
	require.NoError(t, err)
	a.Equal(owner, h)
	a.Equal(3, passes)
}

func TestExecMethodActivation(t *testing.T) {
	a := assert.New(t)
	st := New()
	owner, _ := st.Copy(Root)
	var me, here Handle
	body := Body{Fn: func(st *State) (Handle, error) {
		me = st.Recipient()
		here = st.Here()
		return me, nil
	}}
	_, err := st.invoke(owner, body, "arg", Global)
	require.NoError(t, err)
	a.Equal(owner, me)
	// The activation scope is a fresh copy of the owner.
	a.NotEqual(owner, here)
	parent, _ := st.Parent(here)
	a.Equal(owner, parent)
	// The alias was bound on the activation scope.
	ownerOf, v, ok := st.GetField(here, "arg")
	a.True(ok)
	a.Equal(here, ownerOf)
	a.Equal(PtrValue(Global), v)
}

func TestExecStringLiteralUnsupported(t *testing.T) {
	st := New()
	i := runErr(t, st, `"text"`)
	assert.Contains(t, i.Msg, "string literals")
}

func TestExecIntLiteralNeedsPrototype(t *testing.T) {
	st := New()
	i := runErr(t, st, "5")
	assert.Contains(t, i.Msg, "Int prototype")
}
