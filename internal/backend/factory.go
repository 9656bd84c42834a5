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

import "fmt"

// Name identifies which Driver implementation to construct.
type Name string

const (
	POSIX Name = "posix"
	MemFS Name = "memfs"
	Fake  Name = "fake"
)

// New constructs the Driver named by name, rooted at root. root is
// ignored by the memfs and fake drivers.
func New(name Name, root string) (Driver, error) {
	switch name {
	case POSIX, "":
		return NewPOSIXDriver(root)
	case MemFS:
		return NewMemDriver(), nil
	case Fake:
		return NewFakeDriver(), nil
	default:
		return nil, fmt.Errorf("backend: unknown driver %q", name)
	}
}
