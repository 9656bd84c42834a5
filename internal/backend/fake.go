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

import (
	"os"
	"sync"
)

// fakeDriver tracks only which paths exist, doing no real I/O at all.
// It backs --fake runs, which exercise the full bucket state machine
// and convergence statistics at a fraction of the wall-clock cost of
// touching a real filesystem.
type fakeDriver struct {
	mu     sync.Mutex
	exists map[string]struct{}
}

// NewFakeDriver returns a Driver that performs no I/O.
func NewFakeDriver() Driver {
	return &fakeDriver{exists: make(map[string]struct{})}
}

func (d *fakeDriver) Root() string { return "fake://" }

func (d *fakeDriver) MkdirAll(dir string) error { return nil }

func (d *fakeDriver) Create(path string, size int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exists[path] = struct{}{}
	return nil
}

func (d *fakeDriver) Access(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.exists[path]; !ok {
		return os.ErrNotExist
	}
	return nil
}

func (d *fakeDriver) Remove(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.exists[path]; !ok {
		return os.ErrNotExist
	}
	delete(d.exists, path)
	return nil
}

func (d *fakeDriver) Chmod(path string, mode os.FileMode) error { return nil }

func (d *fakeDriver) Exists(path string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.exists[path]
	return ok, nil
}
