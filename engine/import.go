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
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// importModule locates "<name>.proba" in the search path and
// evaluates it with the target object as the sole context, so the
// module's top-level definitions land in the target's namespace. The
// caller's context stack is saved across the evaluation.
func (st *State) importModule(name string, target Handle, line int) (Handle, error) {
	path, err := st.findModule(name)
	if err != nil {
		return 0, st.errorf(line, "%s", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, st.errorf(line, "%s", errors.Wrapf(err, "unable to read module %s", name))
	}

	moduleStack := newStack()
	moduleStack.Enter(target, false)
	saved := st.stack.swap(moduleStack)
	defer func() { st.stack.swap(saved) }()

	if _, err := Run(st, path, string(data)); err != nil {
		if _, ok := err.(*Interrupt); ok {
			return 0, err
		}
		// Scan or build failure inside the module.
		return 0, st.errorf(line, "failed to parse module %s: %s", name, err)
	}
	return target, nil
}

// findModule answers the first regular file "<dir>/<name>.proba"
// along the search path.
func (st *State) findModule(name string) (string, error) {
	for _, dir := range st.search {
		path := filepath.Join(dir, name+".proba")
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", errors.Errorf("module %s not found in search path", name)
}
