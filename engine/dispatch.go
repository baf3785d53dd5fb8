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

// Equality dispatch re-enters user code, which may itself dispatch
// by equality. The depth guard turns runaway recursion into a
// runtime error instead of exhausting the host stack.
const maxEqualityDepth = 64

// MatchMethod finds the method handling a (recipient, message) pair.
// Methods are considered in insertion order on the recipient, then on
// each prototype up the chain; the first match wins. The boolean is
// false when the walk reaches Root without a match. The error arm
// carries interrupts raised while evaluating equality patterns.
func (st *State) MatchMethod(recipient, message Handle) (Method, bool, error) {
	for {
		// Iterate by index: equality patterns run user code that may
		// grow the method table under us.
		for i := 0; i < len(st.methods); i++ {
			m := st.methods[i]
			if m.Owner != recipient {
				continue
			}
			switch m.Pattern.Kind {
			case Proto:
				if _, ok := st.Relation(message, m.Pattern.Anchor); ok {
					return m, true, nil
				}
			case Eq:
				ok, err := st.equalityMatches(m.Pattern.Anchor, message)
				if err != nil {
					return Method{}, false, err
				}
				if ok {
					return m, true, nil
				}
			}
		}
		if recipient == Root {
			return Method{}, false, nil
		}
		parent, ok := st.Parent(recipient)
		if !ok {
			return Method{}, false, nil
		}
		recipient = parent
	}
}

// equalityMatches decides an equality pattern by the language's own
// protocol: send "==" to the anchor to obtain a comparator object,
// dispatch the message against the comparator, and compare the
// answer with the True object. Anchors without an "==" method fall
// back to handle identity.
func (st *State) equalityMatches(anchor, message Handle) (bool, error) {
	if st.eqDepth >= maxEqualityDepth {
		return false, st.errorf(0, "equality dispatch recursed too deeply")
	}
	st.eqDepth++
	defer func() { st.eqDepth-- }()

	eq, ok := st.GetMethod(anchor, "==")
	if !ok {
		return anchor == message, nil
	}
	comparator, err := st.invoke(anchor, eq.Body, "", anchor)
	if err != nil {
		return false, err
	}
	m, found, err := st.MatchMethod(comparator, message)
	if err != nil || !found {
		return false, err
	}
	answer, err := st.invoke(comparator, m.Body, m.Pattern.Alias, message)
	if err != nil {
		return false, err
	}
	truth, ok := st.LookupField("True")
	if !ok || truth.Kind != KindPtr {
		return false, st.errorf(0, "the True object is not defined")
	}
	return answer == truth.Ptr, nil
}
