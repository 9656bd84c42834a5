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

import "math/rand"

// tossCoin decides whether a stable-aging tick creates or deletes a
// file. The original tool drew this from (rand()%100)/100.0 compared
// against a bias rather than a uniform float draw, which quantizes the
// draw to 100 discrete steps instead of the full range a direct
// float64 draw would give. That quantization is harmless at the
// bias values a run is ever configured with, but is reproduced here
// rather than switching to rng.Float64() so two runs seeded the same
// way pick the same sequence of creates and deletes.
func tossCoin(rng *rand.Rand, createBias float64) (create bool) {
	draw := float64(rng.Intn(100)) / 100.0
	return draw < createBias
}
