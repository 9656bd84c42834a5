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

// Package backend abstracts the filesystem the aging engine ages. Two
// real drivers are provided: a POSIX driver rooted at a directory on
// disk, and an in-memory driver for tests and for aging runs that only
// need to exercise the bookkeeping, not real I/O. A third, fake driver
// tracks no bytes at all and is used by --fake runs that want the
// bucket statistics of a run without its I/O cost.
package backend

import (
	"os"
	"time"
)

// Driver is the set of filesystem operations the aging engine needs.
// Paths are always relative to the driver's root.
type Driver interface {
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error

	// Create creates path, truncating it if it already exists, and
	// grows it to size bytes using the same block-aligned zero-fill
	// fallocate emulates on backends with no native fallocate.
	Create(path string, size int64) error

	// Access opens path and reads at most one byte, the way the
	// original tool "touches" a file to record an access without
	// changing its content or size. The POSIX and in-memory drivers
	// treat a missing or permission-denied path as transient and retry
	// until it succeeds; the fake driver reports it at once.
	Access(path string) error

	// Remove deletes path.
	Remove(path string) error

	// Chmod sets path's permission bits. Drivers that cannot support
	// permissions (e.g. an in-memory filesystem) may no-op.
	Chmod(path string, mode os.FileMode) error

	// Exists reports whether path is present.
	Exists(path string) (bool, error)

	// Root returns the driver's root directory, for diagnostics.
	Root() string
}

// retry mirrors the original tool's behavior of treating EACCES/ENOENT
// races against a concurrently-mutating tree as transient: it retries
// op with a fixed backoff instead of failing the whole run. Any other
// error is returned immediately.
func retry(op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}
		if os.IsPermission(err) || os.IsNotExist(err) {
			time.Sleep(retryBackoff)
			continue
		}
		return err
	}
}

const retryBackoff = time.Second
