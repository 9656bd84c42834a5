// Copyright 2024 The Geriatrix Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import "github.com/go-git/go-billy/v5/memfs"

// NewMemDriver returns a Driver backed entirely by memory. It is the
// "alternate" backend: useful for aging runs that only care about the
// bucket bookkeeping and statistical convergence, not real disk I/O,
// and for tests that would otherwise be at the mercy of disk speed and
// leftover state between runs.
func NewMemDriver() Driver {
	return &billyDriver{fs: memfs.New(), root: "memfs://"}
}
