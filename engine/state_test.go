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

func TestReservedObjects(t *testing.T) {
	a := assert.New(t)
	st := New()

	parent, ok := st.Parent(Root)
	a.True(ok)
	a.Equal(Root, parent)

	parent, ok = st.Parent(Global)
	a.True(ok)
	a.Equal(Root, parent)

	a.Equal(Global, st.Here())

	// Global carries the Object field naming Root.
	owner, v, ok := st.GetField(Global, "Object")
	a.True(ok)
	a.Equal(Global, owner)
	a.Equal(PtrValue(Root), v)
}

func TestCopyIsShallow(t *testing.T) {
	a := assert.New(t)
	st := New()
	st.LetField(Root, "f", IntValue(1))
	st.DefineMethod(Root, KwPattern("m"), Body{Fn: func(*State) (Handle, error) { return 0, nil }})

	q, ok := st.Copy(Root)
	require.True(t, ok)
	a.GreaterOrEqual(int(q), 2)

	parent, _ := st.Parent(q)
	a.Equal(Root, parent)
	ctx, _ := st.CreationContext(q)
	a.Equal(Global, ctx)

	// The copy owns no fields or methods of its own; both tables
	// resolve through the prototype chain.
	owner, _, ok := st.GetField(q, "f")
	a.True(ok)
	a.Equal(Root, owner)
	m, ok := st.GetMethod(q, "m")
	a.True(ok)
	a.Equal(Root, m.Owner)
}

func TestCopyOfMissingObject(t *testing.T) {
	st := New()
	_, ok := st.Copy(Handle(999))
	assert.False(t, ok)
}

func TestRelation(t *testing.T) {
	a := assert.New(t)
	st := New()
	p, _ := st.Copy(Root)
	q, _ := st.Copy(p)
	r, _ := st.Copy(q)

	depth, ok := st.Relation(r, r)
	a.True(ok)
	a.Equal(0, depth)

	depth, ok = st.Relation(r, p)
	a.True(ok)
	a.Equal(2, depth)

	depth, ok = st.Relation(r, Root)
	a.True(ok)
	a.Equal(3, depth)

	_, ok = st.Relation(p, q)
	a.False(ok)

	_, ok = st.Relation(Global, p)
	a.False(ok)
}

func TestFieldShadowing(t *testing.T) {
	a := assert.New(t)
	st := New()
	p, _ := st.Copy(Root)
	q, _ := st.Copy(p)
	st.LetField(p, "x", IntValue(1))

	owner, v, ok := st.GetField(q, "x")
	a.True(ok)
	a.Equal(p, owner)
	a.Equal(int64(1), v.Int)

	// A nearer definition shadows the ancestor's.
	st.LetField(q, "x", IntValue(2))
	owner, v, ok = st.GetField(q, "x")
	a.True(ok)
	a.Equal(q, owner)
	a.Equal(int64(2), v.Int)

	_, _, ok = st.GetField(q, "missing")
	a.False(ok)
}

func TestSetFieldRequiresExisting(t *testing.T) {
	a := assert.New(t)
	st := New()
	p, _ := st.Copy(Root)
	a.False(st.SetField(p, "x", IntValue(1)))
	a.True(st.LetField(p, "x", IntValue(1)))
	a.True(st.SetField(p, "x", IntValue(2)))
	_, v, _ := st.GetField(p, "x")
	a.Equal(int64(2), v.Int)
}

func TestMethodShadowing(t *testing.T) {
	a := assert.New(t)
	st := New()
	p, _ := st.Copy(Root)
	q, _ := st.Copy(p)
	st.DefineMethod(p, KwPattern("m"), Body{Fn: func(*State) (Handle, error) { return 0, nil }})
	st.DefineMethod(q, KwPattern("m"), Body{Fn: func(*State) (Handle, error) { return 0, nil }})

	m, ok := st.GetMethod(q, "m")
	a.True(ok)
	a.Equal(q, m.Owner)
	m, ok = st.GetMethod(p, "m")
	a.True(ok)
	a.Equal(p, m.Owner)
}

// Redefining under the same pattern-equivalence key replaces in
// place: the alias and body change, the table does not grow.
func TestDefineMethodReplaces(t *testing.T) {
	a := assert.New(t)
	st := New()
	p, _ := st.Copy(Root)

	redefined := st.DefineMethod(p, ProtoPattern(Root, "a"), Body{Fn: func(*State) (Handle, error) { return 1, nil }})
	a.False(redefined)
	before := len(st.methods)

	redefined = st.DefineMethod(p, ProtoPattern(Root, "b"), Body{Fn: func(*State) (Handle, error) { return 2, nil }})
	a.True(redefined)
	a.Equal(before, len(st.methods))

	m, ok, err := st.MatchMethod(p, Root)
	require.NoError(t, err)
	require.True(t, ok)
	a.Equal("b", m.Pattern.Alias)
}

func TestPatternEquivalence(t *testing.T) {
	a := assert.New(t)
	a.True(ProtoPattern(5, "x").Equivalent(ProtoPattern(5, "")))
	a.True(EqPattern(5, "x").Equivalent(EqPattern(5, "y")))
	a.False(ProtoPattern(5, "").Equivalent(EqPattern(5, "")))
	a.False(ProtoPattern(5, "").Equivalent(ProtoPattern(6, "")))
	a.True(KwPattern("m").Equivalent(KwPattern("m")))
	a.False(KwPattern("m").Equivalent(KwPattern("n")))
	a.False(KwPattern("m").Equivalent(ProtoPattern(5, "")))
}

func TestHandlesAreNotReused(t *testing.T) {
	a := assert.New(t)
	st := New()
	p, _ := st.Copy(Root)
	st.ClearGarbage()
	a.False(st.Exists(p))
	q, _ := st.Copy(Root)
	a.Greater(q, p)
}
