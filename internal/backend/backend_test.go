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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func driverPairs(t *testing.T) map[string]Driver {
	posix, err := NewPOSIXDriver(t.TempDir())
	require.NoError(t, err)
	return map[string]Driver{
		"posix": posix,
		"memfs": NewMemDriver(),
		"fake":  NewFakeDriver(),
	}
}

func TestDriverCreateAccessRemove(t *testing.T) {
	for name, d := range driverPairs(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, d.MkdirAll("a/b"))
			path := "a/b/f.dat"

			ok, err := d.Exists(path)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, d.Create(path, 8192))

			ok, err = d.Exists(path)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, d.Access(path))

			require.NoError(t, d.Remove(path))
			ok, err = d.Exists(path)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDriverAccessMissingFails(t *testing.T) {
	for name, d := range driverPairs(t) {
		t.Run(name, func(t *testing.T) {
			err := d.Access("does/not/exist")
			assert.Error(t, err)
		})
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Name("bogus"), t.TempDir())
	assert.Error(t, err)
}

func TestFallocateEmulateSpansMultipleBlocks(t *testing.T) {
	d, err := NewPOSIXDriver(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, d.MkdirAll("."))
	require.NoError(t, d.Create("big.dat", blockSize*3+17))
}
