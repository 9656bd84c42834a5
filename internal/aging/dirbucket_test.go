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
	"github.com/stretchr/testify/require"
)

func TestDirBucketPathPrefixFixedLeafWithoutFanout(t *testing.T) {
	b := NewDirBucket(3, 0.5, 0)
	assert.Equal(t, "d1/d2/d3", b.PathPrefix)
}

func TestDirBucketPathPrefixStopsShortWithFanout(t *testing.T) {
	b := NewDirBucket(3, 0.5, 4)
	assert.Equal(t, "d1/d2", b.PathPrefix)
}

func TestDirBucketPathPrefixRootIsEmpty(t *testing.T) {
	b := NewDirBucket(0, 1, 0)
	assert.Equal(t, "", b.PathPrefix)

	b2 := NewDirBucket(0, 1, 5)
	assert.Equal(t, "", b2.PathPrefix)
}

func TestDirBucketGetFileToDeleteEmpty(t *testing.T) {
	b := NewDirBucket(0, 1, 10)
	assert.Nil(t, b.GetFileToDelete())
}

func TestDirBucketGetFileToDeleteReturnsMember(t *testing.T) {
	b := NewDirBucket(0, 1, 10)
	f := NewFile("only", 1, 0, 0)
	b.AddFile(f)

	got := b.GetFileToDelete()
	require.NotNil(t, got)
	assert.Equal(t, f.Path, got.Path)
}
