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

// Package std seeds a fresh engine state with the initial object
// graph: the Object root, booleans, numbers, and None, with their
// native methods. Parts that need no host support are written in
// Proba itself and evaluated during bootstrap.
package std

import (
	"fmt"

	"github.com/Konstantin-Maca/proba-lang/engine"
	"github.com/pkg/errors"
)

const boolSource = `
let Bool copy Object;
let True copy Bool;
let False copy Bool;
at True on : then; Object as T; : else; Object do T;
at False on : then; Object; : else; Object as F do F;
`

const noneSource = `
at (let None copy Object) on : none? do True;
at Object on : none? do False;
`

// Bootstrap installs the standard object graph into st. It must run
// against a state fresh from engine.New.
func Bootstrap(st *engine.State) error {
	defineObject(st)
	if _, err := engine.Run(st, "<std>", boolSource); err != nil {
		return errors.Wrap(err, "bootstrapping booleans")
	}
	defineBool(st)
	if _, err := engine.Run(st, "<std>", "let Number copy Object; let Int copy Number; let Float copy Number;"); err != nil {
		return errors.Wrap(err, "bootstrapping numbers")
	}
	defineInt(st)
	defineFloat(st)
	if _, err := engine.Run(st, "<std>", noneSource); err != nil {
		return errors.Wrap(err, "bootstrapping None")
	}
	defineNone(st)
	return nil
}

func defineObject(st *engine.State) {
	st.DefineMethod(engine.Root, engine.KwPattern("exit"), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		return 0, &engine.Interrupt{Kind: engine.Exit, Value: st.Recipient()}
	}})
	st.DefineMethod(engine.Root, engine.KwPattern("print"), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		p := st.Recipient()
		fmt.Fprintf(st.Output(), "[[Object#%d]]", p)
		return p, nil
	}})
	st.DefineMethod(engine.Root, engine.KwPattern("println"), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		p := st.Recipient()
		fmt.Fprintf(st.Output(), "[[Object#%d]]\n", p)
		return p, nil
	}})
	// "==" answers a comparator object holding one method that
	// compares any message with the original recipient by identity.
	st.DefineMethod(engine.Root, engine.KwPattern("=="), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		sub, ok := st.Copy(st.Recipient())
		if !ok {
			return 0, st.Errorf(0, "fatal system error: recipient does not exist")
		}
		st.PushContext(sub)
		st.DefineMethod(sub, engine.ProtoPattern(engine.Root, "other"), engine.Body{Fn: identityCompare})
		return st.PopContext(), nil
	}})
}

// identityCompare is the inner arm of the Object "==" protocol: the
// comparator's parent is the object "==" was sent to.
func identityCompare(st *engine.State) (engine.Handle, error) {
	target, _ := st.Parent(st.Recipient())
	other, err := contextPtr(st, "other")
	if err != nil {
		return 0, err
	}
	return boolAnswer(st, target == other)
}

func defineBool(st *engine.State) {
	for _, name := range []string{"True", "False"} {
		repr := "[[" + name + "]]"
		h, err := globalPtr(st, name)
		if err != nil {
			continue
		}
		st.DefineMethod(h, engine.KwPattern("print"), printNative(repr, false))
		st.DefineMethod(h, engine.KwPattern("println"), printNative(repr, true))
	}
}

func defineInt(st *engine.State) {
	intProto, err := globalPtr(st, "Int")
	if err != nil {
		return
	}
	st.LetField(intProto, "value", engine.IntValue(0))

	// "==" prefers a payload comparison against other ints and falls
	// back to identity for everything else; insertion order decides.
	st.DefineMethod(intProto, engine.KwPattern("=="), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		sub, ok := st.Copy(st.Recipient())
		if !ok {
			return 0, st.Errorf(0, "fatal system error: recipient does not exist")
		}
		proto, err := globalPtr(st, "Int")
		if err != nil {
			return 0, err
		}
		st.PushContext(sub)
		st.DefineMethod(sub, engine.ProtoPattern(proto, "other"), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
			target, _ := st.Parent(st.Recipient())
			left, err := intPayload(st, target)
			if err != nil {
				return 0, err
			}
			other, err := contextPtr(st, "other")
			if err != nil {
				return 0, err
			}
			right, err := intPayload(st, other)
			if err != nil {
				return 0, err
			}
			return boolAnswer(st, left == right)
		}})
		st.DefineMethod(sub, engine.ProtoPattern(engine.Root, "other"), engine.Body{Fn: identityCompare})
		return st.PopContext(), nil
	}})

	st.DefineMethod(intProto, engine.KwPattern("print"), engine.Body{Fn: printIntNative(false)})
	st.DefineMethod(intProto, engine.KwPattern("println"), engine.Body{Fn: printIntNative(true)})
	st.DefineMethod(intProto, engine.KwPattern("++"), engine.Body{Fn: stepNative(1)})
	st.DefineMethod(intProto, engine.KwPattern("--"), engine.Body{Fn: stepNative(-1)})
	st.DefineMethod(intProto, engine.KwPattern("+"), arithMethod(func(a, b int64) (int64, error) {
		return a + b, nil
	}))
	st.DefineMethod(intProto, engine.KwPattern("-"), arithMethod(func(a, b int64) (int64, error) {
		return a - b, nil
	}))
	st.DefineMethod(intProto, engine.KwPattern("*"), arithMethod(func(a, b int64) (int64, error) {
		return a * b, nil
	}))
	st.DefineMethod(intProto, engine.KwPattern("/"), arithMethod(func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	}))
}

func defineFloat(st *engine.State) {
	floatProto, err := globalPtr(st, "Float")
	if err != nil {
		return
	}
	st.LetField(floatProto, "value", engine.FloatValue(0))
	st.DefineMethod(floatProto, engine.KwPattern("print"), engine.Body{Fn: printFloatNative(false)})
	st.DefineMethod(floatProto, engine.KwPattern("println"), engine.Body{Fn: printFloatNative(true)})
}

func defineNone(st *engine.State) {
	none, err := globalPtr(st, "None")
	if err != nil {
		return
	}
	st.DefineMethod(none, engine.KwPattern("print"), printNative("", false))
	st.DefineMethod(none, engine.KwPattern("println"), printNative("", true))
	st.DefineMethod(none, engine.KwPattern("dbg"), printNative("[[None]]", true))
}

// arithMethod builds a binary arithmetic keyword method: the keyword
// answers a comparator-style object whose single method consumes the
// right operand and answers a fresh Int.
func arithMethod(op func(a, b int64) (int64, error)) engine.Body {
	return engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		sub, ok := st.Copy(st.Recipient())
		if !ok {
			return 0, st.Errorf(0, "fatal system error: recipient does not exist")
		}
		proto, err := globalPtr(st, "Int")
		if err != nil {
			return 0, err
		}
		st.PushContext(sub)
		st.DefineMethod(sub, engine.ProtoPattern(proto, "other"), engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
			target, _ := st.Parent(st.Recipient())
			left, err := intPayload(st, target)
			if err != nil {
				return 0, err
			}
			other, err := contextPtr(st, "other")
			if err != nil {
				return 0, err
			}
			right, err := intPayload(st, other)
			if err != nil {
				return 0, err
			}
			v, err := op(left, right)
			if err != nil {
				return 0, st.Errorf(0, "%s", err)
			}
			return newInt(st, v)
		}})
		return st.PopContext(), nil
	}}
}

// stepNative mutates the recipient's integer payload in place and
// answers the recipient.
func stepNative(delta int64) func(st *engine.State) (engine.Handle, error) {
	return func(st *engine.State) (engine.Handle, error) {
		recipient := st.Recipient()
		v, err := intPayload(st, recipient)
		if err != nil {
			return 0, err
		}
		owner, _, _ := st.GetField(recipient, "value")
		st.SetField(owner, "value", engine.IntValue(v+delta))
		return recipient, nil
	}
}

func printNative(repr string, newline bool) engine.Body {
	return engine.Body{Fn: func(st *engine.State) (engine.Handle, error) {
		if newline {
			fmt.Fprintln(st.Output(), repr)
		} else {
			fmt.Fprint(st.Output(), repr)
		}
		return st.Recipient(), nil
	}}
}

func printIntNative(newline bool) func(st *engine.State) (engine.Handle, error) {
	return func(st *engine.State) (engine.Handle, error) {
		recipient := st.Recipient()
		v, err := intPayload(st, recipient)
		if err != nil {
			return 0, err
		}
		if newline {
			fmt.Fprintf(st.Output(), "%d\n", v)
		} else {
			fmt.Fprintf(st.Output(), "%d", v)
		}
		return recipient, nil
	}
}

func printFloatNative(newline bool) func(st *engine.State) (engine.Handle, error) {
	return func(st *engine.State) (engine.Handle, error) {
		recipient := st.Recipient()
		v, err := payloadValue(st, recipient)
		if err != nil {
			return 0, err
		}
		if v.Kind != engine.KindFloat {
			return 0, st.Errorf(0, "the recipient is not a float")
		}
		if newline {
			fmt.Fprintf(st.Output(), "%v\n", v.Float)
		} else {
			fmt.Fprintf(st.Output(), "%v", v.Float)
		}
		return recipient, nil
	}
}

// newInt instantiates the Int prototype with the given payload.
func newInt(st *engine.State, v int64) (engine.Handle, error) {
	proto, err := globalPtr(st, "Int")
	if err != nil {
		return 0, err
	}
	q, _ := st.Copy(proto)
	st.LetField(q, "value", engine.IntValue(v))
	return q, nil
}

// payloadValue reads the "value" field of h, chasing pointer values:
// "set value 2" stores a reference to an Int object, while literals
// store the raw payload.
func payloadValue(st *engine.State, h engine.Handle) (engine.Value, error) {
	for hops := 0; hops < 16; hops++ {
		_, v, ok := st.GetField(h, "value")
		if !ok {
			return engine.Value{}, st.Errorf(0, "the recipient has no value field")
		}
		if v.Kind != engine.KindPtr {
			return v, nil
		}
		h = v.Ptr
	}
	return engine.Value{}, st.Errorf(0, "the value field is too indirect")
}

// intPayload reads the integer payload of h, searching the prototype
// chain the way field reads do.
func intPayload(st *engine.State, h engine.Handle) (int64, error) {
	v, err := payloadValue(st, h)
	if err != nil {
		return 0, err
	}
	if v.Kind != engine.KindInt {
		return 0, st.Errorf(0, "the recipient is not an integer")
	}
	return v.Int, nil
}

// contextPtr resolves a name bound in the current context to an
// object handle.
func contextPtr(st *engine.State, name string) (engine.Handle, error) {
	v, ok := st.LookupField(name)
	if !ok || v.Kind != engine.KindPtr {
		return 0, st.Errorf(0, "undefined keyword-method or field name: %s", name)
	}
	return v.Ptr, nil
}

// globalPtr resolves a field of the global scope to an object handle.
func globalPtr(st *engine.State, name string) (engine.Handle, error) {
	_, v, ok := st.GetField(engine.Global, name)
	if !ok || v.Kind != engine.KindPtr {
		return 0, st.Errorf(0, "undefined keyword-method or field name: %s", name)
	}
	return v.Ptr, nil
}

// boolAnswer resolves the shared True or False object.
func boolAnswer(st *engine.State, b bool) (engine.Handle, error) {
	if b {
		return contextPtr(st, "True")
	}
	return contextPtr(st, "False")
}
