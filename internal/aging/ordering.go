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

import "sort"

// mostUnderTarget returns the index of the bucket with the largest
// key(total), i.e. the one furthest from its ideal share on the side
// that key's sign convention treats as "needs more". Bucket counts in
// a single aging run are small (tens, not thousands), so a linear scan
// beats maintaining a heap that would need re-keying on every mutation
// anyway.
func mostUnderTarget[T any](buckets []T, key func(T) float64) int {
	best := -1
	var bestKey float64
	for i, b := range buckets {
		k := key(b)
		if best == -1 || k > bestKey {
			best = i
			bestKey = k
		}
	}
	return best
}

// orderByKey returns a copy of buckets sorted by descending key(total),
// the same "needs the most attention first" direction mostUnderTarget
// picks the top of. The deletion victim search walks every bucket in
// this order per axis, rather than stopping at the top pick, since the
// most over/under-represented bucket along one axis may hold no file
// combination available along the other two.
func orderByKey[T any](buckets []T, key func(T) float64) []T {
	ordered := append([]T(nil), buckets...)
	sort.SliceStable(ordered, func(i, j int) bool { return key(ordered[i]) > key(ordered[j]) })
	return ordered
}

// pickSizeBucket returns the size bucket farthest from its ideal
// fraction that still fits the disk capacity budget: it walks buckets
// in descending gap order and skips any whose ByteSize would push
// liveBytes at or past diskBytes, returning nil - the "exhausted all
// options" case - if none fit.
func pickSizeBucket(buckets []*SizeBucket, total int, liveBytes, diskBytes int64) *SizeBucket {
	for _, sb := range orderByKey(buckets, func(b *SizeBucket) float64 { return b.Key(total) }) {
		if liveBytes+sb.ByteSize < diskBytes {
			return sb
		}
	}
	return nil
}

func pickDirBucket(buckets []*DirBucket, total int) *DirBucket {
	// DirBucket.Key is actual-minus-ideal, so its negation is positive
	// for an under-represented depth.
	i := mostUnderTarget(buckets, func(b *DirBucket) float64 { return -b.Key(total) })
	if i == -1 {
		return nil
	}
	return buckets[i]
}

func findSizeBucket(buckets []*SizeBucket, byteSize int64) *SizeBucket {
	for _, sb := range buckets {
		if sb.ByteSize == byteSize {
			return sb
		}
	}
	return nil
}

func findDirBucketByDepth(buckets []*DirBucket, depth int) *DirBucket {
	for _, db := range buckets {
		if db.Depth == depth {
			return db
		}
	}
	return nil
}
