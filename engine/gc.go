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

// countLinks counts the references keeping q alive: as a parent or
// creation context of a live object, as a field's pointer payload,
// and as a scope on the context stack. Root and Global reference
// themselves and so never reach zero.
func (st *State) countLinks(q Handle) int {
	n := 0
	for _, o := range st.objects {
		if o.Parent == q {
			n++
		}
		if o.Context == q {
			n++
		}
	}
	for i := range st.fields {
		if st.fields[i].Value.Kind == KindPtr && st.fields[i].Value.Ptr == q {
			n++
		}
	}
	for off := 0; off < st.stack.Depth(); off++ {
		if st.stack.Peek(off).Scope == q {
			n++
		}
	}
	return n
}

// ClearGarbage deletes every object with zero reachability that is
// not white-listed, repeating until a fixed point. Counts are
// recomputed after each pass rather than decremented during
// deletion, which is what lets a dead cycle reach zero together.
// Fields and methods die with their owner.
func (st *State) ClearGarbage(whiteList ...Handle) {
	white := make(map[Handle]bool, len(whiteList))
	for _, h := range whiteList {
		white[h] = true
	}
	for run := true; run; {
		run = false
		handles := make([]Handle, 0, len(st.objects))
		for h := range st.objects {
			handles = append(handles, h)
		}
		for _, h := range handles {
			if white[h] {
				continue
			}
			if st.countLinks(h) == 0 {
				st.deleteObject(h)
				run = true
			}
		}
	}
}

func (st *State) deleteObject(q Handle) {
	st.log.V(1).Info("collect", "handle", int(q))
	methods := st.methods[:0]
	for i := range st.methods {
		if st.methods[i].Owner != q {
			methods = append(methods, st.methods[i])
		}
	}
	st.methods = methods
	fields := st.fields[:0]
	for i := range st.fields {
		if st.fields[i].Owner != q {
			fields = append(fields, st.fields[i])
		}
	}
	st.fields = fields
	delete(st.objects, q)
}
