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
	"fmt"
	"io"
)

// Row is one bucket's ideal-vs-actual population fraction, as reported
// at the end of an aging run.
type Row struct {
	Label  string
	Ideal  float64
	Actual float64
}

// Kind names which distribution a dump covers, and becomes the header
// column label.
type Kind string

const (
	KindSize Kind = "SIZE"
	KindAge  Kind = "AGE"
	KindDir  Kind = "DEPTH"
)

// header is the column label a dump's kind prints in its header line.
// It matches KindSize/KindDir directly, but the original tool's age
// dump header reads "BUCKET FRACTION TYPE", not "AGE FRACTION TYPE",
// since a row's label there is a bucket, not an age value.
func (k Kind) header() string {
	if k == KindAge {
		return "BUCKET"
	}
	return string(k)
}

// Dump writes rows in the "<TOKEN> FRACTION TYPE" layout the original
// tool prints at the end of a run - one of SIZE, DEPTH, or BUCKET,
// depending on kind - followed by one IDEAL and one ACTUAL line per
// bucket.
func Dump(w io.Writer, kind Kind, rows []Row) error {
	if _, err := fmt.Fprintf(w, "%s FRACTION TYPE\n", kind.header()); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s %.6f IDEAL\n", r.Label, r.Ideal); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s %.6f ACTUAL\n", r.Label, r.Actual); err != nil {
			return err
		}
	}
	return nil
}
