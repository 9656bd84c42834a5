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

// Package aging implements the triple-indexed bucket bookkeeping that
// drives a filesystem aging run: files are tracked simultaneously by
// size bucket, age bucket, and directory-depth bucket, and the engine
// continually creates and deletes files to steer the live population
// toward a target distribution along all three axes at once.
package aging

// File is a single live file the engine is tracking. It belongs to
// exactly one bucket along each of the three axes at any moment; a
// plain pointer is all Go needs to reference it from those buckets,
// since the garbage collector - not a generation counter - is what
// keeps a dangling reference from outliving the file it names.
type File struct {
	Path  string
	Size  int64
	Depth int

	// BlockSize and BlockCount mirror stat(2)'s st_blksize/st_blocks,
	// derived the same way the original tool derives them: files of at
	// least 4096 bytes are counted in 4096-byte blocks, files of at
	// least 1024 bytes in 1024-byte blocks, and anything smaller is
	// its own single block. The count is size/blockSize with any
	// remainder dropped. A zero-size file has zero blocks.
	BlockSize  int64
	BlockCount int64

	// BirthTick is the tick the file was created on. Ticks are shared
	// across both phases: rapid fill advances the same counter stable
	// aging continues from, so a rapid-filled file's BirthTick falls
	// somewhere in [1, K].
	BirthTick int64

	sizeBucket *SizeBucket
	ageBucket  *AgeBucket
	dirBucket  *DirBucket

	listElem interface{} // *list.Element, boxed to avoid importing container/list here
}

// deriveBlocks computes BlockSize/BlockCount for a file of the given
// size, following the original tool's stat(2) emulation exactly.
func deriveBlocks(size int64) (blockSize, blockCount int64) {
	switch {
	case size == 0:
		return 4096, 0
	case size >= 4096:
		blockSize = 4096
	case size >= 1024:
		blockSize = 1024
	default:
		return size, 1
	}
	blockCount = size / blockSize
	return blockSize, blockCount
}

// NewFile builds a File record for a not-yet-created file. Bucket
// membership is assigned separately, once the caller has decided which
// buckets the file should join.
func NewFile(path string, size int64, depth int, birthTick int64) *File {
	bs, bc := deriveBlocks(size)
	return &File{
		Path:       path,
		Size:       size,
		Depth:      depth,
		BlockSize:  bs,
		BlockCount: bc,
		BirthTick:  birthTick,
	}
}

// Age returns how many ticks old the file is as of now.
func (f *File) Age(now int64) int64 {
	if now < f.BirthTick {
		return 0
	}
	return now - f.BirthTick
}
