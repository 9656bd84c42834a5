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

package distfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeFile(t *testing.T) {
	in := "3\n4096 0.5\n16384 0.3\n1048576 0.2\n"
	entries, err := ParseSizeFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, SizeEntry{ByteSize: 4096, Weight: 0.5}, entries[0])
	assert.Equal(t, SizeEntry{ByteSize: 1048576, Weight: 0.2}, entries[2])
}

func TestParseSizeFileAcceptsTrailingCumulativeColumn(t *testing.T) {
	in := "2\n4096 0.5 0.5\n16384 0.5 1.0\n"
	entries, err := ParseSizeFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, SizeEntry{ByteSize: 4096, Weight: 0.5}, entries[0])
	assert.Equal(t, SizeEntry{ByteSize: 16384, Weight: 0.5}, entries[1])
}

func TestParseSizeFileCountMismatch(t *testing.T) {
	in := "2\n4096 0.5\n"
	_, err := ParseSizeFile(strings.NewReader(in))
	assert.Error(t, err)
}

func TestParseAgeFileRequiresAscendingCutoffs(t *testing.T) {
	in := "2\n0.5 1\n0.2 1\n"
	_, err := ParseAgeFile(strings.NewReader(in))
	assert.Error(t, err)
}

func TestParseAgeFile(t *testing.T) {
	in := "2\n0.3 1\n1.0 2\n"
	entries, err := ParseAgeFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, AgeEntry{CutoffRatio: 1.0, Weight: 2}, entries[1])
}

func TestParseDirFile(t *testing.T) {
	in := "2\n0 1 10\n1 3 20\n"
	entries, err := ParseDirFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []DirEntry{
		{Depth: 0, Weight: 1, SiblingFanout: 10},
		{Depth: 1, Weight: 3, SiblingFanout: 20},
	}, entries)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]float64{1, 1, 2})
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.5}, got, 1e-9)
}

func TestNormalizeAllZero(t *testing.T) {
	got := Normalize([]float64{0, 0})
	assert.Equal(t, []float64{0, 0}, got)
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	err := Dump(&buf, KindSize, []Row{
		{Label: "4096", Ideal: 0.5, Actual: 0.48},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "SIZE FRACTION TYPE")
	assert.Contains(t, out, "4096 0.500000 IDEAL")
	assert.Contains(t, out, "4096 0.480000 ACTUAL")
}

func TestDumpAgeHeaderIsBucket(t *testing.T) {
	var buf bytes.Buffer
	err := Dump(&buf, KindAge, []Row{{Label: "0.5", Ideal: 0.5, Actual: 0.5}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "BUCKET FRACTION TYPE\n"))
}

func TestDumpDirHeaderIsDepth(t *testing.T) {
	var buf bytes.Buffer
	err := Dump(&buf, KindDir, []Row{{Label: "0", Ideal: 1, Actual: 1}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "DEPTH FRACTION TYPE\n"))
}
