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

// Package distfile reads and writes the target-distribution files that
// describe how the file population should be spread across the size,
// age, and directory-depth buckets, and dumps the ideal/actual split
// once a run has ended.
package distfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SizeEntry is one line of a size-distribution file: files of ByteSize
// should make up Weight of the total, before normalization.
type SizeEntry struct {
	ByteSize int64
	Weight   float64
}

// AgeEntry is one line of an age-distribution file. CutoffRatio is the
// fraction of the run's convergence horizon T below which a file
// belongs to this bucket; buckets must be given in ascending order.
type AgeEntry struct {
	CutoffRatio float64
	Weight      float64
}

// DirEntry is one line of a directory-depth distribution file.
// SiblingFanout is how many sibling directories the deepest level of
// this depth spreads its files across; each new file picks one at
// random. Zero means a single fixed directory.
type DirEntry struct {
	Depth         int
	Weight        float64
	SiblingFanout int
}

// ParseSizeFile reads a size-distribution file: a leading count line
// followed by that many "<byte_size> <weight> <cumulative?>" lines. The
// trailing cumulative-fraction column is optional and, when present,
// ignored - Normalize recomputes it from the weights.
func ParseSizeFile(r io.Reader) ([]SizeEntry, error) {
	lines, err := readEntryLines(r)
	if err != nil {
		return nil, err
	}
	entries := make([]SizeEntry, 0, len(lines))
	for i, fields := range lines {
		if len(fields) != 2 && len(fields) != 3 {
			return nil, fmt.Errorf("size distribution line %d: want 2 or 3 fields, got %d", i+1, len(fields))
		}
		size, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("size distribution line %d: %w", i+1, err)
		}
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("size distribution line %d: %w", i+1, err)
		}
		entries = append(entries, SizeEntry{ByteSize: size, Weight: weight})
	}
	return entries, nil
}

// ParseAgeFile reads an age-distribution file: a leading count line
// followed by that many "<cutoff_ratio> <weight>" lines, ascending by
// cutoff ratio.
func ParseAgeFile(r io.Reader) ([]AgeEntry, error) {
	lines, err := readEntryLines(r)
	if err != nil {
		return nil, err
	}
	entries := make([]AgeEntry, 0, len(lines))
	prev := -1.0
	for i, fields := range lines {
		if len(fields) != 2 {
			return nil, fmt.Errorf("age distribution line %d: want 2 fields, got %d", i+1, len(fields))
		}
		ratio, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("age distribution line %d: %w", i+1, err)
		}
		if ratio <= prev {
			return nil, fmt.Errorf("age distribution line %d: cutoff ratios must strictly increase", i+1)
		}
		prev = ratio
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("age distribution line %d: %w", i+1, err)
		}
		entries = append(entries, AgeEntry{CutoffRatio: ratio, Weight: weight})
	}
	return entries, nil
}

// ParseDirFile reads a directory-depth distribution file: a leading
// count line followed by that many "<depth> <weight> <sibling_fanout>"
// lines.
func ParseDirFile(r io.Reader) ([]DirEntry, error) {
	lines, err := readEntryLines(r)
	if err != nil {
		return nil, err
	}
	entries := make([]DirEntry, 0, len(lines))
	for i, fields := range lines {
		if len(fields) != 3 {
			return nil, fmt.Errorf("dir distribution line %d: want 3 fields, got %d", i+1, len(fields))
		}
		depth, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("dir distribution line %d: %w", i+1, err)
		}
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("dir distribution line %d: %w", i+1, err)
		}
		fanout, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("dir distribution line %d: %w", i+1, err)
		}
		entries = append(entries, DirEntry{Depth: depth, Weight: weight, SiblingFanout: fanout})
	}
	return entries, nil
}

// LoadSizeFile is a convenience wrapper opening path before parsing it.
func LoadSizeFile(path string) ([]SizeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSizeFile(f)
}

// LoadAgeFile is a convenience wrapper opening path before parsing it.
func LoadAgeFile(path string) ([]AgeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseAgeFile(f)
}

// LoadDirFile is a convenience wrapper opening path before parsing it.
func LoadDirFile(path string) ([]DirEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDirFile(f)
}

// Normalize converts raw weights into fractions of the total that sum
// to 1, the form the aging engine's buckets actually consume.
func Normalize(weights []float64) []float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	fractions := make([]float64, len(weights))
	if total == 0 {
		return fractions
	}
	for i, w := range weights {
		fractions[i] = w / total
	}
	return fractions
}

// readEntryLines reads the leading count line, then that many
// whitespace-separated field lines, skipping blank lines. A mismatch
// between the declared count and the number of lines present is an
// error, matching the original tool's strict distribution file format.
func readEntryLines(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	count, err := firstNonBlankInt(sc)
	if err != nil {
		return nil, err
	}
	lines := make([][]string, 0, count)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, strings.Fields(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) != count {
		return nil, fmt.Errorf("distribution file declares %d entries, found %d", count, len(lines))
	}
	return lines, nil
}

func firstNonBlankInt(sc *bufio.Scanner) (int, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		return strconv.Atoi(line)
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("distribution file is empty")
}
