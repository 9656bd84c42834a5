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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saurabhkadekodi/geriatrix/clock"
	"github.com/saurabhkadekodi/geriatrix/internal/backend"
	"github.com/saurabhkadekodi/geriatrix/internal/workerpool"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.DiskBytes == 0 {
		cfg.DiskBytes = 51200
	}
	if cfg.Utilization == 0 {
		cfg.Utilization = 0.5
	}
	if cfg.SizeDist == nil {
		cfg.SizeDist = []SizeSpec{{ByteSize: 1024, Ideal: 0.5}, {ByteSize: 4096, Ideal: 0.5}}
	}
	if cfg.AgeDist == nil {
		cfg.AgeDist = []AgeSpec{{CutoffRatio: 0.5, Ideal: 0.5}, {CutoffRatio: 1.0, Ideal: 0.5}}
	}
	if cfg.DirDist == nil {
		cfg.DirDist = []DirSpec{{Depth: 0, Ideal: 1.0, SiblingFanout: 5}}
	}
	if cfg.Runs == 0 {
		cfg.Runs = 4
	}

	pool, err := workerpool.NewStaticWorkerPool(1, 2)
	require.NoError(t, err)
	pool.Start()
	t.Cleanup(pool.Stop)

	e, err := New(cfg, backend.NewFakeDriver(), pool, clock.RealClock{})
	require.NoError(t, err)
	return e
}

func TestEngineRapidFillReachesUtilizationTarget(t *testing.T) {
	e := newTestEngine(t, Config{DiskBytes: 100000, Utilization: 1.0})
	require.NoError(t, e.rapidFill(context.Background()))
	require.GreaterOrEqual(t, e.liveBytes, int64(100000))
	require.Greater(t, e.files.Len(), 0)
}

func TestEngineRunHaltsAndReportsStats(t *testing.T) {
	e := newTestEngine(t, Config{})
	stats, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, stats.HaltReason)
	require.Greater(t, stats.Ticks, int64(0))
}

func TestEngineConfidenceZeroDisablesProbe(t *testing.T) {
	e := newTestEngine(t, Config{Confidence: 0})
	stats, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, HaltAccuracy, stats.HaltReason)
}

func TestEngineReAgeMigratesToOlderBucket(t *testing.T) {
	e := newTestEngine(t, Config{DiskBytes: 12800, Utilization: 1.0})
	require.NoError(t, e.rapidFill(context.Background()))

	files := e.ageBuckets[0].Files()
	require.NotEmpty(t, files)
	f := files[0]

	// Bucket 0's Ratio is 1-0.5=0.5, so cutoff = 0.5*clock. Any clock
	// bigger than 2*f.BirthTick pushes the cutoff past this file's
	// birth tick and migrates it into bucket 1.
	e.reAge(2*f.BirthTick + 1000)

	require.Same(t, e.ageBuckets[1], f.ageBucket)
}

func TestEngineReAgeLeavesFileBelowCutoff(t *testing.T) {
	e := newTestEngine(t, Config{DiskBytes: 12800, Utilization: 1.0})
	require.NoError(t, e.rapidFill(context.Background()))

	files := e.ageBuckets[0].Files()
	require.NotEmpty(t, files)
	f := files[0]

	// clock small enough that cutoff = 0.5*clock stays below every
	// file's birth tick: nothing migrates.
	e.reAge(1)

	require.Same(t, e.ageBuckets[0], f.ageBucket)
}

func TestEngineCreateDeleteRoundTrip(t *testing.T) {
	// Half utilization leaves room under DiskBytes for one more file,
	// and a tick past the rapid fill gives it a path no file uses yet.
	e := newTestEngine(t, Config{DiskBytes: 12800, Utilization: 0.5})
	require.NoError(t, e.rapidFill(context.Background()))
	before := e.files.Len()

	created, err := e.createFile(e.tick + 1)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, before+1, e.files.Len())

	require.NoError(t, e.deleteFile())
	require.Equal(t, before, e.files.Len())
}

func TestEngineCreateFileConvertsToDeleteAtCapacity(t *testing.T) {
	e := newTestEngine(t, Config{DiskBytes: 12800, Utilization: 1.0})
	require.NoError(t, e.rapidFill(context.Background()))
	before := e.files.Len()

	// Force every size bucket to look like it would push liveBytes at
	// or past DiskBytes, so createFile can't find a fit.
	e.liveBytes = e.cfg.DiskBytes

	created, err := e.createFile(e.tick + 1)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, before, e.files.Len())

	require.NoError(t, e.performOp(true))
	require.Equal(t, before-1, e.files.Len())
}

func TestEngineRearmKeepsLivePopulationAndExtendsBudget(t *testing.T) {
	e := newTestEngine(t, Config{DiskBytes: 12800, Utilization: 1.0, Runs: 1})
	stats, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, HaltWorkload, stats.HaltReason)

	e.Rearm(0.99, 3, 0)
	require.Equal(t, int64(4), e.cfg.Runs)

	stats2, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, e.files.Len(), 0)
	require.Greater(t, stats2.Ticks, stats.Ticks)
}

func TestEngineHaltsOnMaxRuntimeUsingSimulatedClock(t *testing.T) {
	clk := clock.NewSimulatedClock(time.Now())
	pool, err := workerpool.NewStaticWorkerPool(1, 2)
	require.NoError(t, err)
	pool.Start()
	t.Cleanup(pool.Stop)

	// Rapid fill takes K=13 ticks (13 files of 1024 bytes reach 12800),
	// so calculateT puts the horizon at T=26. That leaves a dozen
	// stable-aging ticks, each followed by an idle pause, for the
	// clock-advancing goroutine below to pass MaxRuntime before
	// stableAge could halt on tick >= T instead.
	e, err := New(Config{
		DiskBytes:   12800,
		Utilization: 1.0,
		Runs:        1 << 30,
		SizeDist:    []SizeSpec{{ByteSize: 1024, Ideal: 1.0}},
		AgeDist:     []AgeSpec{{CutoffRatio: 0.5, Ideal: 0.025}, {CutoffRatio: 1.0, Ideal: 0.975}},
		DirDist:     []DirSpec{{Depth: 0, Ideal: 1.0, SiblingFanout: 5}},
		Idle:        true,
		MaxRuntime:  time.Minute,
	}, backend.NewFakeDriver(), pool, clk)
	require.NoError(t, err)

	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				clk.AdvanceTime(time.Minute)
				time.Sleep(time.Millisecond)
			}
		}
	}()

	stats, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, HaltExecTime, stats.HaltReason)
}

func TestEngineRowsReportPerAxisFractions(t *testing.T) {
	e := newTestEngine(t, Config{DiskBytes: 51200, Utilization: 1.0})
	require.NoError(t, e.rapidFill(context.Background()))

	require.Len(t, e.SizeRows(), 2)
	require.Len(t, e.AgeRows(), 2)
	require.Len(t, e.DirRows(), 1)
	require.InDelta(t, 1.0, e.DirRows()[0].Actual, 1e-9)
}
