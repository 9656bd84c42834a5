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

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/saurabhkadekodi/geriatrix/cfg"
	"github.com/saurabhkadekodi/geriatrix/clock"
	"github.com/saurabhkadekodi/geriatrix/internal/aging"
	"github.com/saurabhkadekodi/geriatrix/internal/backend"
	"github.com/saurabhkadekodi/geriatrix/internal/distfile"
	"github.com/saurabhkadekodi/geriatrix/internal/logger"
	"github.com/saurabhkadekodi/geriatrix/internal/workerpool"
)

// priorityWorkers is the width of the worker pool's priority lane.
// Nothing in the CLI surface exposes it: the aging engine only ever
// schedules onto the normal lane, so a single priority worker is
// enough to keep the lane alive for tests that exercise it directly.
const priorityWorkers = 1

// runAging wires a Config into an aging engine, runs it to completion
// (or until interrupted), and dumps its final per-axis distributions.
func runAging(ctx context.Context, c *cfg.Config) error {
	engineCfg, err := buildEngineConfig(c)
	if err != nil {
		return err
	}

	drv, err := backend.New(backend.Name(cfg.EffectiveBackend(&c.Engine)), c.Workload.MountPoint)
	if err != nil {
		return fmt.Errorf("constructing backend: %w", err)
	}

	pool, err := workerpool.NewStaticWorkerPool(priorityWorkers, uint32(c.Engine.Workers))
	if err != nil {
		return fmt.Errorf("constructing worker pool: %w", err)
	}
	pool.Start()
	defer pool.Stop()

	engine, err := aging.New(engineCfg, drv, pool, clock.RealClock{})
	if err != nil {
		return fmt.Errorf("constructing engine: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received interrupt, halting after the current tick")
			cancel()
		case <-runCtx.Done():
		}
	}()

	for {
		stats, err := engine.Run(runCtx)
		if err != nil {
			if runCtx.Err() == nil {
				return fmt.Errorf("running aging engine: %w", err)
			}
			// Interrupted during rapid fill: still dump what exists.
			if err := dumpDistributions(c.Workload, engine); err != nil {
				return fmt.Errorf("writing distribution dumps: %w", err)
			}
			return nil
		}
		logSummary(stats, c.Workload)

		if err := dumpDistributions(c.Workload, engine); err != nil {
			return fmt.Errorf("writing distribution dumps: %w", err)
		}

		if runCtx.Err() != nil || !c.Engine.QueryBeforeQuit {
			return nil
		}
		confidence, extraRuns, extraRuntime, ok := promptResume(stats)
		if !ok {
			return nil
		}
		engine.Rearm(confidence, extraRuns, extraRuntime)
	}
}

// logSummary prints the overall-run report a halt produces: trigger,
// runtime, operation count, overwrite count, workload volume, the
// accuracy reached, and where the distribution dumps landed.
func logSummary(stats aging.Stats, w cfg.WorkloadConfig) {
	logger.Infof(
		"run halted: reason=%s elapsed=%s ticks=%d files=%d workload=%.2fMB overwrites=%.2fx chi2-cdf=%.4f",
		stats.HaltReason, stats.Elapsed, stats.Ticks, stats.TotalFiles,
		float64(stats.WorkloadBytes)/1e6, stats.OverwriteCount, stats.FinalPValue)
	logger.Infof("distribution dumps: size=%s age=%s dir=%s",
		outputLabel(w.SizeOutFile), outputLabel(w.AgeOutFile), outputLabel(w.DirOutFile))
}

func outputLabel(path string) string {
	if path == "" {
		return "<stdout>"
	}
	return path
}

func buildEngineConfig(c *cfg.Config) (aging.Config, error) {
	sizes, err := distfile.LoadSizeFile(c.Workload.SizeInFile)
	if err != nil {
		return aging.Config{}, fmt.Errorf("loading size distribution: %w", err)
	}
	ages, err := distfile.LoadAgeFile(c.Workload.AgeInFile)
	if err != nil {
		return aging.Config{}, fmt.Errorf("loading age distribution: %w", err)
	}
	dirs, err := distfile.LoadDirFile(c.Workload.DirInFile)
	if err != nil {
		return aging.Config{}, fmt.Errorf("loading dir distribution: %w", err)
	}

	sizeIdeal := distfile.Normalize(weightsOf(sizes, func(e distfile.SizeEntry) float64 { return e.Weight }))
	ageIdeal := distfile.Normalize(weightsOf(ages, func(e distfile.AgeEntry) float64 { return e.Weight }))
	dirIdeal := distfile.Normalize(weightsOf(dirs, func(e distfile.DirEntry) float64 { return e.Weight }))

	sizeSpecs := make([]aging.SizeSpec, len(sizes))
	for i, s := range sizes {
		sizeSpecs[i] = aging.SizeSpec{ByteSize: s.ByteSize, Ideal: sizeIdeal[i]}
	}
	ageSpecs := make([]aging.AgeSpec, len(ages))
	for i, a := range ages {
		ageSpecs[i] = aging.AgeSpec{CutoffRatio: a.CutoffRatio, Ideal: ageIdeal[i]}
	}
	dirSpecs := make([]aging.DirSpec, len(dirs))
	for i, d := range dirs {
		dirSpecs[i] = aging.DirSpec{Depth: d.Depth, Ideal: dirIdeal[i], SiblingFanout: d.SiblingFanout}
	}

	var maxRuntime time.Duration
	if c.Engine.MaxMinutes > 0 {
		maxRuntime = time.Duration(c.Engine.MaxMinutes) * time.Minute
	}

	return aging.Config{
		DiskBytes:   c.Workload.DiskBytes,
		Utilization: float64(c.Workload.Utilization),
		MountPoint:  c.Workload.MountPoint,
		SizeDist:    sizeSpecs,
		AgeDist:     ageSpecs,
		DirDist:     dirSpecs,
		Confidence:  float64(c.Engine.Confidence),
		Runs:        c.Engine.Runs,
		Idle:        c.Engine.Idle,
		MaxRuntime:  maxRuntime,
		Seed:        c.Engine.Seed,
	}, nil
}

func weightsOf[T any](entries []T, f func(T) float64) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = f(e)
	}
	return out
}

// dumpDistributions writes each axis's ideal-vs-actual dump to its own
// --*-out path, or stdout if that path is empty.
func dumpDistributions(w cfg.WorkloadConfig, engine *aging.Engine) error {
	if err := dumpRows(w.SizeOutFile, distfile.KindSize, engine.SizeRows()); err != nil {
		return err
	}
	if err := dumpRows(w.AgeOutFile, distfile.KindAge, engine.AgeRows()); err != nil {
		return err
	}
	return dumpRows(w.DirOutFile, distfile.KindDir, engine.DirRows())
}

func dumpRows(path string, kind distfile.Kind, rows []distfile.Row) error {
	if path == "" {
		return distfile.Dump(os.Stdout, kind, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return distfile.Dump(f, kind, rows)
}

// promptResume implements --query-before-quit: report the halt trigger
// and current accuracy, then ask the operator whether to keep aging.
// A yes answer re-prompts for a fresh confidence target and additional
// run/runtime budget to feed into Engine.Rearm.
func promptResume(stats aging.Stats) (confidence float64, extraRuns int64, extraRuntime time.Duration, ok bool) {
	sc := bufio.NewScanner(os.Stdin)

	fmt.Printf("halted: reason=%s chi2-cdf=%.4f overwrites=%.2fx - continue aging? [y/N]: ",
		stats.HaltReason, stats.FinalPValue, stats.OverwriteCount)
	if !sc.Scan() || !isYes(sc.Text()) {
		return 0, 0, 0, false
	}

	fmt.Printf("new confidence target [%.4f]: ", stats.FinalPValue)
	confidence = stats.FinalPValue
	if sc.Scan() {
		if v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64); err == nil {
			confidence = v
		}
	}

	fmt.Print("additional runs [0]: ")
	if sc.Scan() {
		if v, err := strconv.ParseInt(strings.TrimSpace(sc.Text()), 10, 64); err == nil {
			extraRuns = v
		}
	}

	fmt.Print("additional minutes [0]: ")
	if sc.Scan() {
		if v, err := strconv.Atoi(strings.TrimSpace(sc.Text())); err == nil {
			extraRuntime = time.Duration(v) * time.Minute
		}
	}

	return confidence, extraRuns, extraRuntime, true
}

func isYes(s string) bool {
	answer := strings.ToLower(strings.TrimSpace(s))
	return answer == "y" || answer == "yes"
}
