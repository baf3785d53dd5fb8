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

package lang

// Build folds a token stream into a syntax tree. The top-level tree
// is always a *Queue. The returned error is always a *SyntaxError.
func Build(tokens []Token) (*Queue, error) {
	b := &builder{tokens: tokens}
	return b.queue(1, true)
}

// builder is a single-pass recursive-descent fold over the token
// stream. Statements are message chains separated by semicolons;
// parens group a sub-queue and braces group a quick context.
type builder struct {
	tokens []Token
	idx    int
}

func (b *builder) peek() (Token, bool) {
	if b.idx >= len(b.tokens) {
		return Token{}, false
	}
	return b.tokens[b.idx], true
}

func (b *builder) errorf(line int, msg string) *SyntaxError {
	return &SyntaxError{Line: line, Msg: msg}
}

func (b *builder) queue(line int, global bool) (*Queue, error) {
	ret := &Queue{Line: line}
	for {
		tok, ok := b.peek()
		if !ok {
			break
		}
		switch tok.Kind {
		case TokSemi:
			b.idx++
		case TokAs, TokDo:
			return nil, b.errorf(tok.Line, "unexpected method definition keyword")
		case TokRParen, TokRBrace:
			if global {
				return nil, b.errorf(tok.Line, "unexpected closing paren or brace in global context")
			}
			return ret, nil
		default:
			node, err := b.messageChain()
			if err != nil {
				return nil, err
			}
			if node == nil {
				return nil, b.errorf(tok.Line, "unexpected token")
			}
			ret.Nodes = append(ret.Nodes, node)
		}
	}
	return ret, nil
}

// messageChain folds "a b c" into Message(Message(a, b), c). A nil
// node with a nil error means the chain ended before it began.
func (b *builder) messageChain() (Node, error) {
	recipient, err := b.singleton()
	if recipient == nil || err != nil {
		return recipient, err
	}
	line := recipient.Pos()
	for {
		msg, err := b.singleton()
		if err != nil {
			return nil, err
		}
		if msg == nil {
			return recipient, nil
		}
		recipient = &Message{Line: line, Recipient: recipient, Message: msg}
	}
}

func (b *builder) singleton() (Node, error) {
	tok, ok := b.peek()
	if !ok {
		return nil, nil
	}
	switch tok.Kind {
	case TokSemi, TokRParen, TokRBrace, TokAs, TokDo:
		return nil, nil
	case TokHere:
		b.idx++
		return &Here{Line: tok.Line}, nil
	case TokMe:
		b.idx++
		return &Me{Line: tok.Line}, nil
	case TokRepeat:
		b.idx++
		return &Repeat{Line: tok.Line}, nil
	case TokReturn:
		// The answer expression is optional; a bare return answers
		// the recipient.
		b.idx++
		value, err := b.messageChain()
		if err != nil {
			return nil, err
		}
		return &Return{Line: tok.Line, Value: value}, nil
	case TokName:
		b.idx++
		return &Name{Line: tok.Line, Text: tok.Text}, nil
	case TokInt:
		b.idx++
		return &IntLit{Line: tok.Line, Value: tok.Int}, nil
	case TokFloat:
		b.idx++
		return &FloatLit{Line: tok.Line, Value: tok.Float}, nil
	case TokString:
		b.idx++
		return &StringLit{Line: tok.Line, Text: tok.Text}, nil
	case TokLParen:
		b.idx++
		queue, err := b.queue(tok.Line, false)
		if err != nil {
			return nil, err
		}
		closing, ok := b.peek()
		switch {
		case !ok:
			return nil, b.errorf(tok.Line, "paren is never closed")
		case closing.Kind == TokRBrace:
			return nil, b.errorf(closing.Line, "unexpected closing brace")
		}
		b.idx++
		return queue, nil
	case TokLBrace:
		b.idx++
		queue, err := b.queue(tok.Line, false)
		if err != nil {
			return nil, err
		}
		closing, ok := b.peek()
		switch {
		case !ok:
			return nil, b.errorf(tok.Line, "brace is never closed")
		case closing.Kind == TokRParen:
			return nil, b.errorf(closing.Line, "unexpected closing paren")
		}
		b.idx++
		return &QuickContext{Line: tok.Line, Nodes: queue.Nodes}, nil
	case TokCopy:
		b.idx++
		from, err := b.singleton()
		if err != nil {
			return nil, err
		}
		if from == nil {
			return nil, b.errorf(tok.Line, "unexpected end of copy-statement")
		}
		return &Copy{Line: tok.Line, From: from}, nil
	case TokImport:
		b.idx++
		nameNode, err := b.singleton()
		if err != nil {
			return nil, err
		}
		name, ok := nameNode.(*Name)
		if !ok {
			return nil, b.errorf(tok.Line, "expecting a module name after `import'")
		}
		target, err := b.singleton()
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, b.errorf(tok.Line, "unexpected end of import-statement")
		}
		return &Import{Line: tok.Line, Name: name.Text, Target: target}, nil
	case TokLet, TokSet:
		b.idx++
		nameTok, ok := b.peek()
		if !ok || nameTok.Kind != TokName {
			return nil, b.errorf(tok.Line, "name is expected after `let' or `set' keyword")
		}
		b.idx++
		value, err := b.messageChain()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, b.errorf(tok.Line, "unexpected end of let-statement")
		}
		if tok.Kind == TokLet {
			return &Let{Line: tok.Line, Name: nameTok.Text, Value: value}, nil
		}
		return &Set{Line: tok.Line, Name: nameTok.Text, Value: value}, nil
	case TokAt:
		b.idx++
		context, err := b.singleton()
		if err != nil {
			return nil, err
		}
		if context == nil {
			return nil, b.errorf(tok.Line, "expecting singleton message after `at'")
		}
		body, err := b.messageChain()
		if err != nil {
			return nil, err
		}
		if body == nil {
			return nil, b.errorf(tok.Line, "empty body of at-statement")
		}
		return &At{Line: tok.Line, Context: context, Body: body}, nil
	case TokOn:
		return b.onDo()
	default:
		return nil, b.errorf(tok.Line, "unexpected token")
	}
}

// onDo parses "on" { pattern [ "as" NAME ] ";" } "do" MESSAGE_CHAIN.
// A pattern is ": name" (keyword), "= expr" (equalness), or a bare
// expression (prototype).
func (b *builder) onDo() (Node, error) {
	on, _ := b.peek()
	b.idx++
	var patterns []Node
patterns:
	for {
		tok, ok := b.peek()
		if !ok {
			return nil, b.errorf(on.Line, "unfinished method definition")
		}
		if tok.Kind == TokName && tok.Text == ":" {
			// Keyword pattern.
			b.idx++
			nameTok, ok := b.peek()
			if !ok || nameTok.Kind != TokName {
				return nil, b.errorf(tok.Line, "expecting a name after key-operator `:'")
			}
			b.idx++
			patterns = append(patterns, &Pattern{
				Line: nameTok.Line,
				Kind: Keyword,
				Expr: &Name{Line: nameTok.Line, Text: nameTok.Text},
			})
			sep, ok := b.peek()
			if !ok {
				return nil, b.errorf(on.Line, "unfinished method definition")
			}
			switch sep.Kind {
			case TokSemi:
				b.idx++
				continue
			case TokDo:
				break patterns
			default:
				return nil, b.errorf(sep.Line, "expecting `;' or `do' after a keyword-pattern")
			}
		}
		kind := Prototype
		if tok.Kind == TokName && tok.Text == "=" {
			b.idx++
			kind = Equalness
		}
		expr, err := b.messageChain()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, b.errorf(tok.Line, "empty pattern message")
		}
		pattern := Node(&Pattern{Line: expr.Pos(), Kind: kind, Expr: expr})
		sep, ok := b.peek()
		if !ok {
			return nil, b.errorf(on.Line, "unfinished method definition")
		}
		if sep.Kind == TokAs {
			b.idx++
			nameTok, ok := b.peek()
			if !ok || nameTok.Kind != TokName {
				return nil, b.errorf(sep.Line, "expecting a name after token `as'")
			}
			b.idx++
			pattern = &As{Line: pattern.Pos(), Pattern: pattern, Alias: nameTok.Text}
			sep, ok = b.peek()
			if !ok {
				return nil, b.errorf(on.Line, "unfinished method definition")
			}
		}
		switch sep.Kind {
		case TokSemi:
			patterns = append(patterns, pattern)
			b.idx++
		case TokDo:
			patterns = append(patterns, pattern)
			break patterns
		default:
			return nil, b.errorf(sep.Line, "expecting `;' or one of keywords `as' and `do'")
		}
	}
	// Consume the "do".
	b.idx++
	body, err := b.messageChain()
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, b.errorf(on.Line, "empty body message of method definition")
	}
	return desugarOn(&OnDo{Line: on.Line, Patterns: patterns, Body: body}), nil
}

// desugarOn rewrites a multi-pattern definition into nested
// single-pattern ones:
//
//	on A as a; B as b do BODY
//
// becomes
//
//	on A as a do { let a a; on B as b do BODY; here }
//
// The re-binding let is emitted only for aliased patterns.
func desugarOn(n *OnDo) *OnDo {
	if len(n.Patterns) == 1 {
		return n
	}
	line := n.Line
	var nodes []Node
	if as, ok := n.Patterns[0].(*As); ok {
		nodes = append(nodes, &Let{
			Line:  line,
			Name:  as.Alias,
			Value: &Name{Line: line, Text: as.Alias},
		})
	}
	rest := desugarOn(&OnDo{Line: line, Patterns: n.Patterns[1:], Body: n.Body})
	nodes = append(nodes, rest, &Here{Line: line})
	return &OnDo{
		Line:     line,
		Patterns: n.Patterns[:1],
		Body:     &QuickContext{Line: line, Nodes: nodes},
	}
}
