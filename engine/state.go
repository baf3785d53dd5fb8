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
	"io"
	"os"

	"github.com/go-logr/logr"
)

// A State holds the whole runtime: the object graph, the field and
// method tables, and the context stack. It is one logically single
// mutable value threaded explicitly through every evaluator call;
// nothing here is safe for concurrent use.
type State struct {
	next    Handle
	objects map[Handle]object
	fields  []Field
	methods []Method
	stack   *stack

	// file is the path of the source currently being evaluated; it
	// locates runtime errors and method definitions.
	file string
	// search lists the directories consulted by the module loader.
	search []string
	// eqDepth guards the recursive equality dispatch.
	eqDepth int

	log logr.Logger
	out io.Writer
}

// New returns a state holding the two reserved objects. Root is its
// own prototype and creation context; Global descends from Root and
// is its own creation context. Global sits at the bottom of the
// context stack and carries the "Object" field naming Root.
func New() *State {
	st := &State{
		next:    2,
		objects: map[Handle]object{},
		stack:   newStack(),
		log:     logr.Discard(),
		out:     os.Stdout,
	}
	st.objects[Root] = object{Parent: Root, Context: Root}
	st.objects[Global] = object{Parent: Root, Context: Global}
	st.stack.Enter(Global, false)
	st.fields = append(st.fields, Field{Owner: Global, Name: "Object", Value: PtrValue(Root)})
	return st
}

// SetLogger installs a trace logger. The engine logs context pushes,
// dispatch outcomes, and collected handles at V(1).
func (st *State) SetLogger(log logr.Logger) { st.log = log }

// SetOutput redirects the stream written by printing natives.
func (st *State) SetOutput(w io.Writer) { st.out = w }

// Output returns the stream printing natives write to.
func (st *State) Output() io.Writer { return st.out }

// SetSearchPath sets the directories the module loader consults, in
// order. Empty entries are dropped.
func (st *State) SetSearchPath(dirs ...string) {
	st.search = st.search[:0]
	for _, d := range dirs {
		if d != "" {
			st.search = append(st.search, d)
		}
	}
}

// File returns the path of the source currently being evaluated.
func (st *State) File() string { return st.file }

// Exists reports whether the handle names a live object.
func (st *State) Exists(p Handle) bool {
	_, ok := st.objects[p]
	return ok
}

// Copy allocates a fresh object whose prototype is p and whose
// creation context is the current scope. It is the only constructor.
func (st *State) Copy(p Handle) (Handle, bool) {
	if !st.Exists(p) {
		return 0, false
	}
	q := st.next
	st.next++
	st.objects[q] = object{Parent: p, Context: st.Here()}
	return q, true
}

// Parent returns the prototype of p.
func (st *State) Parent(p Handle) (Handle, bool) {
	o, ok := st.objects[p]
	return o.Parent, ok
}

// CreationContext returns the scope p was created under.
func (st *State) CreationContext(p Handle) (Handle, bool) {
	o, ok := st.objects[p]
	return o.Context, ok
}

// Relation returns the prototype-chain distance from child up to
// ancestor, or false when the walk reaches Root without finding it.
func (st *State) Relation(child, ancestor Handle) (int, bool) {
	for depth := 0; ; depth++ {
		if child == ancestor {
			return depth, true
		}
		if child == Root {
			return 0, false
		}
		o, ok := st.objects[child]
		if !ok {
			return 0, false
		}
		child = o.Parent
	}
}

// LetField inserts or overwrites a field on p itself.
func (st *State) LetField(p Handle, name string, v Value) bool {
	if !st.Exists(p) {
		return false
	}
	for i := range st.fields {
		if st.fields[i].Owner == p && st.fields[i].Name == name {
			st.fields[i].Value = v
			return true
		}
	}
	st.fields = append(st.fields, Field{Owner: p, Name: name, Value: v})
	return true
}

// SetField overwrites a field that already exists on p itself.
func (st *State) SetField(p Handle, name string, v Value) bool {
	for i := range st.fields {
		if st.fields[i].Owner == p && st.fields[i].Name == name {
			st.fields[i].Value = v
			return true
		}
	}
	return false
}

// GetField searches p and then its prototype chain, answering the
// first match together with its actual owner. The owner feeds the
// scope-access check.
func (st *State) GetField(p Handle, name string) (owner Handle, v Value, ok bool) {
	for {
		for i := range st.fields {
			if st.fields[i].Owner == p && st.fields[i].Name == name {
				return p, st.fields[i].Value, true
			}
		}
		if p == Root {
			return 0, Value{}, false
		}
		o, exists := st.objects[p]
		if !exists {
			return 0, Value{}, false
		}
		p = o.Parent
	}
}

// DefineMethod installs a method on p, replacing in place any method
// with an equivalent pattern key. It reports whether a replacement
// happened.
func (st *State) DefineMethod(p Handle, pattern Pattern, body Body) bool {
	for i := range st.methods {
		if st.methods[i].Owner == p && st.methods[i].Pattern.Equivalent(pattern) {
			st.methods[i] = Method{Owner: p, Pattern: pattern, Body: body, File: st.file}
			return true
		}
	}
	st.methods = append(st.methods, Method{Owner: p, Pattern: pattern, Body: body, File: st.file})
	return false
}

// GetMethod resolves a keyword method on p or its prototype chain.
func (st *State) GetMethod(p Handle, keyword string) (Method, bool) {
	for {
		for i := range st.methods {
			if st.methods[i].Owner == p && st.methods[i].Pattern.Kind == Kw &&
				st.methods[i].Pattern.Name == keyword {
				return st.methods[i], true
			}
		}
		if p == Root {
			return Method{}, false
		}
		o, exists := st.objects[p]
		if !exists {
			return Method{}, false
		}
		p = o.Parent
	}
}

// Here returns the current scope, or Global when the stack is empty.
func (st *State) Here() Handle {
	if st.stack.Depth() == 0 {
		return Global
	}
	return st.stack.Top(0).Scope
}

// Recipient returns the recipient of the nearest method activation:
// the parent of the activation's scope, since that scope is a fresh
// copy of the recipient. Without an activation it returns Global.
func (st *State) Recipient() Handle {
	for off := 0; off < st.stack.Depth(); off++ {
		f := st.stack.Top(off)
		if f.Activation {
			parent, _ := st.Parent(f.Scope)
			return parent
		}
	}
	return Global
}

// previousScope returns the scope below the top of the stack: the
// scope control entered the current one from. ok is false at the
// bottom of the stack, in which case access checks pass.
func (st *State) previousScope() (Handle, bool) {
	if st.stack.Depth() < 2 {
		return 0, false
	}
	return st.stack.Top(1).Scope, true
}

// hasAccess decides the scope-access rule for a read that resolved
// to a field owned by owner, probed from the given scope. Access is
// granted to owners on the prober's own prototype chain and to
// owners whose creation context is on that chain.
func (st *State) hasAccess(from, owner Handle) bool {
	if _, ok := st.Relation(from, owner); ok {
		return true
	}
	ctx, ok := st.CreationContext(owner)
	if !ok {
		return false
	}
	_, ok = st.Relation(from, ctx)
	return ok
}

// lookupMethod resolves a bare name as a keyword method against the
// context stack: scopes are probed top-down, the walk stops after
// the first activation frame, and Global is the final fallback.
// Scopes on the stack are lexically the prober's own, so the
// scope-access rule is trivially satisfied here; it bites on
// message-path reads and on let/set.
func (st *State) lookupMethod(keyword string) (Method, bool) {
	for off := 0; off < st.stack.Depth(); off++ {
		f := st.stack.Top(off)
		if m, ok := st.GetMethod(f.Scope, keyword); ok {
			return m, true
		}
		if f.Activation {
			break
		}
	}
	return st.GetMethod(Global, keyword)
}

// lookupField resolves a bare name as a field against the context
// stack, under the same barrier and fallback rules as lookupMethod.
func (st *State) lookupField(name string) (Value, bool) {
	for off := 0; off < st.stack.Depth(); off++ {
		f := st.stack.Top(off)
		if _, value, found := st.GetField(f.Scope, name); found {
			return value, true
		}
		if f.Activation {
			break
		}
	}
	if _, value, found := st.GetField(Global, name); found {
		return value, true
	}
	return Value{}, false
}
