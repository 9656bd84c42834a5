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

// AgeBucket owns every live file whose birth tick is at or above this
// bucket's re-aging cutoff and below the previous bucket's. Buckets
// are consulted in ascending CutoffRatio order; the last one is a sink
// that also catches anything older than its own cutoff, since there is
// nowhere older left to migrate to.
//
// Unlike SizeBucket, AgeBucket's gap key is actual-minus-ideal: a
// bucket that has grown past its ideal share sorts first. This is the
// original tool's convention and is kept unchanged; see SizeBucket for
// the sibling bucket type using the opposite sign.
type AgeBucket struct {
	// CutoffRatio is the raw distribution-file value: the ascending
	// fraction of the horizon below which a file belongs to this
	// bucket or an earlier one. Kept verbatim for the --age-out dump
	// labels.
	CutoffRatio float64

	// Ratio is 1-CutoffRatio, the descending quantity reAge and
	// calculateT actually consume: bucket 0's ratio is close to 1
	// (only files born in the run's final stretch stay this young),
	// and it falls toward 0 for the oldest non-sink bucket.
	Ratio float64

	Ideal float64
	Last  bool

	files       map[string]*File
	sizeBuckets map[int64]*SizeBucket
}

// NewAgeBucket creates an empty age bucket.
func NewAgeBucket(cutoffRatio, ideal float64, last bool) *AgeBucket {
	return &AgeBucket{
		CutoffRatio: cutoffRatio,
		Ratio:       1 - cutoffRatio,
		Ideal:       ideal,
		Last:        last,
		files:       make(map[string]*File),
		sizeBuckets: make(map[int64]*SizeBucket),
	}
}

// Count is the number of live files currently in the bucket.
func (b *AgeBucket) Count() int { return len(b.files) }

// ActualFraction is Count() as a fraction of total.
func (b *AgeBucket) ActualFraction(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(b.Count()) / float64(total)
}

// Key is the bucket's gap-ordering key: how far past its ideal share
// the bucket has grown. Positive means over-represented.
func (b *AgeBucket) Key(total int) float64 {
	return b.ActualFraction(total) - b.Ideal
}

// SizeBucket returns this age cohort's nested size bucket for
// byteSize, creating it (with the given ideal fraction) on first use.
func (b *AgeBucket) SizeBucket(byteSize int64, ideal float64) *SizeBucket {
	sb, ok := b.sizeBuckets[byteSize]
	if !ok {
		sb = NewSizeBucket(byteSize, ideal)
		b.sizeBuckets[byteSize] = sb
	}
	return sb
}

// FileToDelete returns a deletion candidate from this age cohort's
// (byteSize, depth) cell, or nil if that cell holds no live file. The
// caller drives byteSize and depth from the engine's global size/dir
// bucket ordering; this only tests membership through the nested chain
// AddFile builds.
func (b *AgeBucket) FileToDelete(byteSize int64, depth int) *File {
	sb, ok := b.sizeBuckets[byteSize]
	if !ok {
		return nil
	}
	db, ok := sb.dirBuckets[depth]
	if !ok {
		return nil
	}
	return db.GetFileToDelete()
}

// AddFile inserts f into the bucket and its nested size/dir buckets.
// The nested inserts track membership only: they never touch f's
// global size/dir back-references, which stay pointed at the engine's
// top-level buckets used for creation-side steering and dumps.
func (b *AgeBucket) AddFile(f *File, sizeIdeal, dirIdeal float64) {
	b.files[f.Path] = f
	f.ageBucket = b
	sb := b.SizeBucket(f.Size, sizeIdeal)
	sb.addFileTracked(f)
	sb.DirBucket(f.Depth, dirIdeal).addFileTracked(f)
}

// RemoveFile evicts f from the bucket and its nested size/dir buckets.
func (b *AgeBucket) RemoveFile(f *File) {
	delete(b.files, f.Path)
	if sb, ok := b.sizeBuckets[f.Size]; ok {
		sb.removeFileTracked(f)
		if db, ok := sb.dirBuckets[f.Depth]; ok {
			db.removeFileTracked(f)
		}
	}
	if f.ageBucket == b {
		f.ageBucket = nil
	}
}

// Files returns every live file in the bucket, for migration during
// reAge.
func (b *AgeBucket) Files() []*File {
	out := make([]*File, 0, len(b.files))
	for _, f := range b.files {
		out = append(out, f)
	}
	return out
}
