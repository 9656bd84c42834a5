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

package cfg

import "runtime"

// DefaultWorkerCount mirrors the corpus's habit of scaling a worker
// pool off the host's CPU count when a caller doesn't pin one.
func DefaultWorkerCount() int {
	return max(2, runtime.NumCPU())
}

// EffectiveBackend resolves the --fake shortcut against an explicit
// --backend value: --fake always wins.
func EffectiveBackend(c *EngineConfig) BackendName {
	if c.Fake {
		return BackendFake
	}
	if c.Backend == "" {
		return BackendPOSIX
	}
	return c.Backend
}
