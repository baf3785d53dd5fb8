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

// Package engine holds the Proba runtime: the object store, the
// context stack, method dispatch, and the tree-walking evaluator.
package engine

import "github.com/Konstantin-Maca/proba-lang/lang"

// Exec walks one syntax node and answers a handle, or unwinds with an
// *Interrupt. The evaluator is stack-recursive; the only suspension
// points are the explicit repeat loop and the unwinding interrupts.
func (st *State) Exec(node lang.Node) (Handle, error) {
	switch n := node.(type) {
	case *lang.Here:
		return st.Here(), nil

	case *lang.Me:
		return st.Recipient(), nil

	case *lang.Return:
		answer := st.Recipient()
		if n.Value != nil {
			v, err := st.Exec(n.Value)
			if err != nil {
				return 0, err
			}
			answer = v
		}
		return 0, returnWith(answer)

	case *lang.Repeat:
		return 0, &Interrupt{Kind: Repeat}

	case *lang.IntLit:
		return st.instantiate(n.Line, "Int", IntValue(n.Value))

	case *lang.FloatLit:
		return st.instantiate(n.Line, "Float", FloatValue(n.Value))

	case *lang.StringLit:
		return 0, st.errorf(n.Line, "string literals are not supported")

	case *lang.Name:
		return st.execName(n)

	case *lang.Message:
		return st.execMessage(n)

	case *lang.Queue:
		return st.execQueue(n.Nodes, n.Line)

	case *lang.QuickContext:
		sub, ok := st.Copy(st.Here())
		if !ok {
			return 0, st.errorf(n.Line, "fatal system error: current scope does not exist")
		}
		st.stack.Enter(sub, false)
		st.log.V(1).Info("enter quick context", "scope", int(sub))
		result, err := st.execQueue(n.Nodes, n.Line)
		st.stack.Pop()
		st.collectAfterScope(result, err)
		return result, err

	case *lang.Copy:
		from, err := st.Exec(n.From)
		if err != nil {
			return 0, err
		}
		q, ok := st.Copy(from)
		if !ok {
			return 0, st.errorf(n.Line, "fatal system error: failed to copy object, because it does not exist")
		}
		return q, nil

	case *lang.At:
		ctx, err := st.Exec(n.Context)
		if err != nil {
			return 0, err
		}
		st.stack.Enter(ctx, false)
		st.log.V(1).Info("enter context", "scope", int(ctx))
		result, err := st.Exec(n.Body)
		st.stack.Pop()
		st.collectAfterScope(result, err)
		return result, err

	case *lang.Let:
		if err := st.checkDefineAccess(n.Line); err != nil {
			return 0, err
		}
		v, err := st.Exec(n.Value)
		if err != nil {
			return 0, err
		}
		st.LetField(st.Here(), n.Name, PtrValue(v))
		return v, nil

	case *lang.Set:
		if err := st.checkDefineAccess(n.Line); err != nil {
			return 0, err
		}
		v, err := st.Exec(n.Value)
		if err != nil {
			return 0, err
		}
		owner, _, ok := st.GetField(st.Here(), n.Name)
		if !ok {
			return 0, st.errorf(n.Line, "there is no field with name %s", n.Name)
		}
		st.SetField(owner, n.Name, PtrValue(v))
		return v, nil

	case *lang.OnDo:
		if len(n.Patterns) != 1 {
			return 0, st.errorf(n.Line, "fatal system error: compound pattern in method definition")
		}
		pattern, err := st.resolvePattern(n.Patterns[0])
		if err != nil {
			return 0, err
		}
		st.DefineMethod(st.Here(), pattern, Body{Tree: n.Body})
		return st.Here(), nil

	case *lang.Import:
		target, err := st.Exec(n.Target)
		if err != nil {
			return 0, err
		}
		return st.importModule(n.Name, target, n.Line)

	default:
		return 0, st.errorf(node.Pos(), "fatal system error: unexpected node in evaluator")
	}
}

// instantiate copies the named global prototype and stores the
// literal payload in its "value" field.
func (st *State) instantiate(line int, proto string, payload Value) (Handle, error) {
	_, v, ok := st.GetField(Global, proto)
	if !ok || v.Kind != KindPtr {
		return 0, st.errorf(line, "the %s prototype is not defined", proto)
	}
	q, _ := st.Copy(v.Ptr)
	st.LetField(q, "value", payload)
	return q, nil
}

// execName resolves a bare name: first as a keyword method of the
// context, then as a field of the context.
func (st *State) execName(n *lang.Name) (Handle, error) {
	if m, ok := st.lookupMethod(n.Text); ok {
		return st.invoke(st.Here(), m.Body, "", st.Here())
	}
	v, ok := st.lookupField(n.Text)
	if ok {
		if v.Kind != KindPtr {
			return 0, st.errorf(n.Line, "field %s holds a system value", n.Text)
		}
		return v.Ptr, nil
	}
	return 0, st.errorf(n.Line, "undefined keyword-method or field name: %s", n.Text)
}

// execMessage evaluates a message send. A bare name in message
// position is tried as a keyword method of the recipient, then as a
// field of the recipient; otherwise the message is evaluated as an
// expression and dispatched by pattern.
func (st *State) execMessage(n *lang.Message) (Handle, error) {
	recipient, err := st.Exec(n.Recipient)
	if err != nil {
		return 0, err
	}
	if name, ok := n.Message.(*lang.Name); ok {
		if m, found := st.GetMethod(recipient, name.Text); found {
			st.log.V(1).Info("dispatch keyword", "recipient", int(recipient), "keyword", name.Text)
			return st.invoke(recipient, m.Body, "", recipient)
		}
		if owner, v, found := st.GetField(recipient, name.Text); found {
			if !st.hasAccess(st.Here(), owner) {
				return 0, st.errorf(n.Line, "you can not access field %s in this context", name.Text)
			}
			if v.Kind != KindPtr {
				return 0, st.errorf(n.Line, "field %s holds a system value", name.Text)
			}
			return v.Ptr, nil
		}
	}
	message, err := st.Exec(n.Message)
	if err != nil {
		return 0, err
	}
	m, found, err := st.MatchMethod(recipient, message)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, st.errorf(n.Line,
			"failed to match method for recipient %d and message %d", recipient, message)
	}
	st.log.V(1).Info("dispatch pattern",
		"recipient", int(recipient), "message", int(message), "owner", int(m.Owner))
	return st.invoke(recipient, m.Body, m.Pattern.Alias, message)
}

// execQueue evaluates nodes left to right and answers the last one.
func (st *State) execQueue(nodes []lang.Node, line int) (Handle, error) {
	if len(nodes) == 0 {
		return 0, st.errorf(line, "empty block of code")
	}
	var result Handle
	for _, node := range nodes {
		v, err := st.Exec(node)
		if err != nil {
			return 0, err
		}
		result = v
	}
	return result, nil
}

// invoke runs a method body against a fresh activation scope copied
// from the recipient. Return breaks out of the body with its answer
// and Repeat restarts it; all other interrupts propagate.
func (st *State) invoke(recipient Handle, body Body, alias string, message Handle) (Handle, error) {
	scope, ok := st.Copy(recipient)
	if !ok {
		return 0, st.errorf(0, "fatal system error: failed to copy object, because it does not exist")
	}
	st.stack.Enter(scope, true)
	st.log.V(1).Info("enter activation", "scope", int(scope), "recipient", int(recipient))
	if alias != "" {
		st.LetField(scope, alias, PtrValue(message))
	}
	var result Handle
	var err error
	for {
		if body.Fn != nil {
			result, err = body.Fn(st)
		} else {
			result, err = st.Exec(body.Tree)
		}
		if err == nil {
			break
		}
		if i, ok := err.(*Interrupt); ok {
			if i.Kind == Return {
				result, err = i.Value, nil
				break
			}
			if i.Kind == Repeat {
				continue
			}
		}
		break
	}
	st.stack.Pop()
	return result, err
}

// Send dispatches a keyword message to recipient on behalf of a host
// caller.
func (st *State) Send(recipient Handle, keyword string) (Handle, error) {
	m, ok := st.GetMethod(recipient, keyword)
	if !ok {
		return 0, st.errorf(0, "failed to match method for recipient %d and keyword %s",
			recipient, keyword)
	}
	return st.invoke(recipient, m.Body, "", recipient)
}

// PushContext pushes a plain scope. Native method bodies use this to
// build intermediate contexts the way user code does with "at".
func (st *State) PushContext(scope Handle) {
	st.stack.Enter(scope, false)
}

// PopContext pops the top frame and returns its scope.
func (st *State) PopContext() Handle {
	return st.stack.Pop().Scope
}

// LookupField resolves a name against the context stack on behalf of
// a native method body.
func (st *State) LookupField(name string) (Value, bool) {
	return st.lookupField(name)
}

// checkDefineAccess enforces the scope-access rule for let and set:
// defining in a scope is allowed at the global scope, at the bottom
// of the stack, and from a scope related to the current scope's
// creation context.
func (st *State) checkDefineAccess(line int) error {
	here := st.Here()
	if here == Global {
		return nil
	}
	prev, havePrev := st.previousScope()
	if !havePrev {
		return nil
	}
	ctx, ok := st.CreationContext(here)
	if !ok {
		return st.errorf(line, "fatal system error: current scope does not exist")
	}
	if _, ok := st.Relation(prev, ctx); !ok {
		return st.errorf(line, "you can not define a field in this context")
	}
	return nil
}

// collectAfterScope runs the garbage sweep after a scope exits,
// white-listing the handle about to be answered so the caller sees
// it alive. Scopes exited by an unwinding interrupt protect the
// interrupt's payload instead.
func (st *State) collectAfterScope(result Handle, err error) {
	if err == nil {
		st.ClearGarbage(result)
		return
	}
	if i, ok := err.(*Interrupt); ok && (i.Kind == Return || i.Kind == Exit) {
		st.ClearGarbage(i.Value)
		return
	}
	st.ClearGarbage()
}

// resolvePattern turns a syntax pattern into a runtime one,
// evaluating the anchor expression of prototype and equality
// patterns at definition time.
func (st *State) resolvePattern(node lang.Node) (Pattern, error) {
	alias := ""
	if as, ok := node.(*lang.As); ok {
		alias = as.Alias
		node = as.Pattern
	}
	p, ok := node.(*lang.Pattern)
	if !ok {
		return Pattern{}, st.errorf(node.Pos(), "fatal system error: malformed pattern node")
	}
	switch p.Kind {
	case lang.Keyword:
		name, ok := p.Expr.(*lang.Name)
		if !ok {
			return Pattern{}, st.errorf(p.Line, "fatal system error: malformed keyword pattern")
		}
		return KwPattern(name.Text), nil
	case lang.Prototype:
		anchor, err := st.Exec(p.Expr)
		if err != nil {
			return Pattern{}, err
		}
		return ProtoPattern(anchor, alias), nil
	case lang.Equalness:
		anchor, err := st.Exec(p.Expr)
		if err != nil {
			return Pattern{}, err
		}
		return EqPattern(anchor, alias), nil
	default:
		return Pattern{}, st.errorf(p.Line, "fatal system error: unknown pattern kind")
	}
}
