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

package aging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveBlocks(t *testing.T) {
	cases := []struct {
		size          int64
		wantBlockSize int64
		wantCount     int64
	}{
		{0, 4096, 0},
		{100, 100, 1},
		{1024, 1024, 1},
		{1500, 1024, 1},
		{4096, 4096, 1},
		{5000, 4096, 1},
	}
	for _, c := range cases {
		bs, bc := deriveBlocks(c.size)
		assert.Equal(t, c.wantBlockSize, bs, "size %d", c.size)
		assert.Equal(t, c.wantCount, bc, "size %d", c.size)
	}
}

func TestFileAge(t *testing.T) {
	f := NewFile("a", 10, 0, 5)
	assert.EqualValues(t, 0, f.Age(3))
	assert.EqualValues(t, 5, f.Age(10))
}
