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

func TestPickSizeBucketSkipsBucketsThatWouldExceedCapacity(t *testing.T) {
	small := NewSizeBucket(1024, 0.1)
	big := NewSizeBucket(8192, 0.9)

	// big's higher ideal fraction sorts it first, but it alone would
	// exceed the disk budget; the walk falls through to small instead
	// of stopping at the top pick.
	got := pickSizeBucket([]*SizeBucket{small, big}, 0, 0, 4096)
	assert.Same(t, small, got)
}

func TestPickSizeBucketReturnsNilWhenNothingFits(t *testing.T) {
	sb := NewSizeBucket(8192, 1.0)
	got := pickSizeBucket([]*SizeBucket{sb}, 0, 4000, 4096)
	assert.Nil(t, got)
}

func TestOrderByKeyDescending(t *testing.T) {
	a := NewSizeBucket(1, 0.1)
	b := NewSizeBucket(2, 0.9)
	ordered := orderByKey([]*SizeBucket{a, b}, func(sb *SizeBucket) float64 { return sb.Key(0) })
	// Key(0) is Ideal-0 = Ideal here (empty buckets), so b (0.9) sorts
	// before a (0.1).
	assert.Same(t, b, ordered[0])
	assert.Same(t, a, ordered[1])
}
