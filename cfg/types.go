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

package cfg

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// BackendName selects which backend.Driver an aging run uses.
type BackendName string

const (
	BackendPOSIX BackendName = "posix"
	BackendMemFS BackendName = "memfs"
	BackendFake  BackendName = "fake"
)

func (b *BackendName) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	valid := []string{string(BackendPOSIX), string(BackendMemFS), string(BackendFake)}
	if !slices.Contains(valid, v) {
		return fmt.Errorf("invalid backend %q: must be one of %v", v, valid)
	}
	*b = BackendName(v)
	return nil
}

// Fraction is a float that must fall within [0, 1], used for the
// utilization and confidence flags.
type Fraction float64

func (f *Fraction) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return fmt.Errorf("invalid fraction %q: %w", text, err)
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("fraction %v out of range [0, 1]", v)
	}
	*f = Fraction(v)
	return nil
}
