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

// SizeBucket tracks how many live files of a given target ByteSize
// exist against how many the ideal distribution calls for. SizeBuckets
// are nested: the engine keeps one global set for rapid-fill,
// create-side sizing decisions, and the deletion victim search's size
// ordering, and one further set per AgeBucket purely for membership
// tracking. Each of those nested SizeBuckets in turn owns its own
// nested DirBuckets, so deletion can test whether a given (age, size,
// depth) cell holds a file via AgeBucket.FileToDelete, while the size
// and depth values driving that search come from the global ordering.
//
// SizeBucket's gap key is ideal-minus-actual, the opposite sign from
// AgeBucket and DirBucket. This is carried over unchanged from the
// original tool. Sorted by descending key (orderByKey), the size view
// therefore starts at its most under-target bucket, while the age and
// dir views start at their most over-target bucket.
type SizeBucket struct {
	ByteSize int64
	Ideal    float64

	files      map[string]*File
	dirBuckets map[int]*DirBucket
}

// NewSizeBucket creates an empty bucket for the given target size.
func NewSizeBucket(byteSize int64, ideal float64) *SizeBucket {
	return &SizeBucket{
		ByteSize:   byteSize,
		Ideal:      ideal,
		files:      make(map[string]*File),
		dirBuckets: make(map[int]*DirBucket),
	}
}

// Count is the number of live files currently in the bucket.
func (b *SizeBucket) Count() int { return len(b.files) }

// ActualFraction is Count() as a fraction of total, the live population
// across every SizeBucket at this level.
func (b *SizeBucket) ActualFraction(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(b.Count()) / float64(total)
}

// Key is the bucket's gap-ordering key: how far short of its ideal
// share the bucket is, given the current total population. Positive
// means under-represented.
func (b *SizeBucket) Key(total int) float64 {
	return b.Ideal - b.ActualFraction(total)
}

// addFileTracked inserts f into the bucket without touching f's
// back-reference. Used when this SizeBucket is nested under an
// AgeBucket rather than the engine's global size-bucket set, so
// f.sizeBucket keeps pointing at the global bucket that owns it.
func (b *SizeBucket) addFileTracked(f *File) { b.files[f.Path] = f }

// removeFileTracked is addFileTracked's inverse.
func (b *SizeBucket) removeFileTracked(f *File) { delete(b.files, f.Path) }

// AddFile inserts f into the bucket and updates its back-reference.
func (b *SizeBucket) AddFile(f *File) {
	b.addFileTracked(f)
	f.sizeBucket = b
}

// RemoveFile evicts f from the bucket.
func (b *SizeBucket) RemoveFile(f *File) {
	b.removeFileTracked(f)
	if f.sizeBucket == b {
		f.sizeBucket = nil
	}
}

// DirBucket returns this size cohort's nested directory-depth bucket
// for depth, creating it (with the given ideal fraction) on first use.
// Only populated on SizeBuckets nested under an AgeBucket.
func (b *SizeBucket) DirBucket(depth int, ideal float64) *DirBucket {
	db, ok := b.dirBuckets[depth]
	if !ok {
		db = NewDirBucket(depth, ideal, 0)
		b.dirBuckets[depth] = db
	}
	return db
}
