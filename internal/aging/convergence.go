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

import "gonum.org/v1/gonum/stat/distuv"

// calculateT computes the stable-aging convergence horizon: the tick
// count by which every age bucket should have accumulated enough
// churn to be statistically well-formed. K is the number of ticks
// rapid fill spent building the initial population; ratio is each
// bucket's descending re-aging ratio (AgeBucket.Ratio, ascending
// CutoffRatio inverted) in bucket order, and ideal is each bucket's
// target population fraction in the same order.
//
// Each non-sink bucket i needs roughly 2*K*ideal_i/s_i ticks to
// accumulate its share, where s_i is the gap between its ratio and the
// previous bucket's (or 1, for bucket 0); the largest such requirement
// drives T. The sink bucket gets a separate term reflecting that it
// keeps accumulating for the rest of the run, and a final floor clamp
// keeps T from landing below what the sink's own gap requires.
func calculateT(k int64, ratio, ideal []float64) int64 {
	n := len(ideal)
	if n == 0 {
		return 0
	}
	gap := func(i int) float64 {
		if i == 0 {
			return 1 - ratio[0]
		}
		return ratio[i-1] - ratio[i]
	}

	var t int64
	for i := 0; i < n-1; i++ {
		s := gap(i)
		ti := int64(2 * float64(k) * ideal[i] / s)
		if ti > t {
			t = ti
		}
	}

	sLast := gap(n - 1)
	tLast := int64((2*float64(k)*(ideal[n-1]-1) + float64(k)) / sLast)
	if tLast > 0 && tLast > t {
		t = tLast
	}

	if sLast*float64(t) <= float64(k) {
		t = int64(float64(k) / sLast)
	}
	return t
}

// chiSquaredStat computes the accuracy probe's test statistic the way
// geriatrix.cpp's calculateChiMeanSquared does: sum over age buckets of
// (ideal-actual)^2/ideal, taken directly over population fractions
// rather than bucket counts.
func chiSquaredStat(ideal, actual []float64) float64 {
	var stat float64
	for i, e := range ideal {
		diff := e - actual[i]
		stat += diff * diff / e
	}
	return stat
}

// chiSquaredCDF evaluates the CDF of the chi-squared distribution at
// x, fixed at n-1 degrees of freedom for n age buckets - the original
// tool builds this distribution once, from NUM_AGES-1, rather than
// dropping degrees of freedom for sparsely populated buckets.
func chiSquaredCDF(n int, x float64) float64 {
	dof := n - 1
	if dof < 1 {
		return 1
	}
	dist := distuv.ChiSquared{K: float64(dof)}
	return dist.CDF(x)
}
