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
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// blockSize is the unit fallocateEmulate grows a file by. It matches the
// block size the aging engine itself uses to derive a File's block
// count, so a fully-allocated file always has an integral block count.
const blockSize = 4096

// billyChmod is the subset of billy.Change this package relies on.
// Not every billy.Filesystem implements it (memfs notably doesn't),
// so callers type-assert against it rather than requiring it.
type billyChmod interface {
	Chmod(name string, mode os.FileMode) error
}

// billyDriver adapts a billy.Filesystem into a Driver. It backs both
// the POSIX driver (osfs) and the in-memory driver (memfs); the two
// only differ in which billy.Filesystem they wrap.
type billyDriver struct {
	fs   billy.Filesystem
	root string
}

// NewPOSIXDriver roots a Driver at a real directory on disk.
func NewPOSIXDriver(root string) (Driver, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &billyDriver{fs: osfs.New(root), root: root}, nil
}

func (d *billyDriver) Root() string { return d.root }

func (d *billyDriver) MkdirAll(dir string) error {
	return retry(func() error { return d.fs.MkdirAll(dir, 0755) })
}

func (d *billyDriver) Remove(path string) error {
	return retry(func() error { return d.fs.Remove(path) })
}

func (d *billyDriver) Exists(path string) (bool, error) {
	_, err := d.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (d *billyDriver) Chmod(path string, mode os.FileMode) error {
	c, ok := d.fs.(billyChmod)
	if !ok {
		return nil
	}
	return retry(func() error { return c.Chmod(path, mode) })
}

// Access opens path and reads a single byte, mirroring the original
// tool's read-based access bump without disturbing file content.
func (d *billyDriver) Access(path string) error {
	return retry(func() error {
		f, err := d.fs.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		buf := make([]byte, 1)
		_, err = f.Read(buf)
		if err == io.EOF {
			return nil
		}
		return err
	})
}

// Create allocates a new file of the given size. billy has no native
// fallocate, so this emulates the original tool's fallback path: grow
// the file to size with Truncate, then force every block to be backed
// by real storage by writing a zero byte at the start of each block.
func (d *billyDriver) Create(path string, size int64) error {
	return retry(func() error {
		f, err := d.fs.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return fallocateEmulate(f, size)
	})
}

func fallocateEmulate(f billy.File, size int64) error {
	if err := f.Truncate(size); err != nil {
		return err
	}
	zero := []byte{0}
	for off := int64(0); off < size; off += blockSize {
		if _, err := f.Seek(off, io.SeekStart); err != nil {
			return err
		}
		if _, err := f.Write(zero); err != nil {
			return err
		}
	}
	return nil
}
