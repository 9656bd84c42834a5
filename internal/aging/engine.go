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
	"fmt"
	"math/rand"
	"path"
	"time"

	"github.com/saurabhkadekodi/geriatrix/clock"
	"github.com/saurabhkadekodi/geriatrix/internal/backend"
	"github.com/saurabhkadekodi/geriatrix/internal/distfile"
	"github.com/saurabhkadekodi/geriatrix/internal/logger"
	"github.com/saurabhkadekodi/geriatrix/internal/workerpool"
)

// SizeSpec is one target size bucket's byte size and ideal fraction of
// the live population.
type SizeSpec struct {
	ByteSize int64
	Ideal    float64
}

// AgeSpec is one target age bucket's cutoff ratio (as a fraction of the
// run's convergence horizon) and ideal fraction of the live population.
type AgeSpec struct {
	CutoffRatio float64
	Ideal       float64
}

// DirSpec is one target directory-depth bucket's depth, ideal fraction,
// and sibling fanout.
type DirSpec struct {
	Depth         int
	Ideal         float64
	SiblingFanout int
}

// HaltReason records why a run's stable-aging phase stopped.
type HaltReason string

const (
	// HaltConvergence fires when the tick count reaches the
	// convergence horizon calculateT predicted up front.
	HaltConvergence HaltReason = "CONVERGENCE"
	// HaltWorkload fires when cumulative bytes written across both
	// phases reach Runs*DiskBytes.
	HaltWorkload HaltReason = "WORKLOAD"
	// HaltExecTime fires when MaxRuntime elapses.
	HaltExecTime HaltReason = "EXEC_TIME"
	// HaltAccuracy fires when the periodic chi-squared probe clears
	// Confidence before the horizon is reached.
	HaltAccuracy HaltReason = "ACCURACY"
	HaltCanceled HaltReason = "CANCELED"
)

// defaultCreateBias is the probability a stable-aging tick creates a
// file rather than deleting one. Nothing in the CLI surface tunes this;
// 0.5 holds the live population steady around its rapid-filled size.
const defaultCreateBias = 0.5

// probeEvery is how often, in ticks, stable aging re-runs the
// chi-squared accuracy probe against the live population.
const probeEvery = 10000

// idleDelay is the pause stable aging takes between operations when
// Config.Idle is set, to spread I/O out instead of running flat out.
const idleDelay = 2 * time.Millisecond

// Config parameterizes an aging run.
type Config struct {
	// DiskBytes is the capacity, in bytes, the run treats the mount
	// point as having.
	DiskBytes int64

	// Utilization is the fraction of DiskBytes rapid fill fills to
	// before stable aging begins.
	Utilization float64

	MountPoint string

	SizeDist []SizeSpec
	AgeDist  []AgeSpec
	DirDist  []DirSpec

	// Confidence is compared against the observed age distribution's
	// fit via the chi-squared CDF: a run is declared converged once
	// CDF(chi-squared statistic) <= CDF(Confidence), both evaluated at
	// the same fixed degrees of freedom. A value <= 0 disables the
	// probe entirely, so the run only halts on convergence, workload,
	// exec time, or cancellation.
	Confidence float64

	// Runs caps the run at this many multiples of DiskBytes written
	// across both phases combined.
	Runs int64

	// Idle injects a short pause between stable-aging operations
	// instead of running flat out.
	Idle bool

	// MaxRuntime bounds wall-clock time regardless of convergence. Zero
	// means no bound.
	MaxRuntime time.Duration

	Seed int64
}

// Stats summarizes a finished run.
type Stats struct {
	TotalFiles int
	Ticks      int64
	T          int64
	HaltReason HaltReason

	// FinalPValue is the age distribution's chi-squared goodness
	// measure at halt: the CDF of the observed fraction-based
	// statistic, at len(ageBuckets)-1 degrees of freedom. Smaller means
	// a closer fit to the ideal distribution, not a classic p-value's
	// usual "smaller means reject" direction.
	FinalPValue float64

	// OverwriteCount is bytesCreated/DiskBytes, i.e. how many multiples
	// of the disk's capacity this run has written across both phases.
	OverwriteCount float64

	// WorkloadBytes is the live byte volume at halt.
	WorkloadBytes int64

	// Elapsed is the wall-clock duration of the Run call that produced
	// this Stats value.
	Elapsed time.Duration
}

// Engine drives a single aging run end to end: rapid-fill the mount
// point to Utilization of DiskBytes, then repeatedly create or delete
// files to steer the live set toward the ideal size/age/dir
// distribution until it converges, the tick or run-cap budget runs
// out, the wall clock expires, or the caller cancels.
type Engine struct {
	cfg  Config
	drv  backend.Driver
	pool workerpool.WorkerPool
	clk  clock.Clock

	rng *rand.Rand

	files       *fileList
	ageBuckets  []*AgeBucket
	dirBuckets  []*DirBucket
	globalSizes []*SizeBucket

	sizeCumulative []float64 // cumulative ideal fraction per globalSizes entry, for sampling

	tick         int64
	T            int64
	K            int64
	liveBytes    int64
	bytesCreated int64
	haltReason   HaltReason
	rapidFilled  bool
}

// New validates cfg and builds an Engine ready to Run.
func New(cfg Config, drv backend.Driver, pool workerpool.WorkerPool, clk clock.Clock) (*Engine, error) {
	if cfg.DiskBytes <= 0 {
		return nil, fmt.Errorf("aging: disk-bytes must be positive")
	}
	if cfg.Utilization <= 0 || cfg.Utilization > 1 {
		return nil, fmt.Errorf("aging: utilization must be in (0, 1]")
	}
	if len(cfg.SizeDist) == 0 || len(cfg.AgeDist) == 0 || len(cfg.DirDist) == 0 {
		return nil, fmt.Errorf("aging: size, age, and dir distributions must each have at least one bucket")
	}
	if cfg.Runs <= 0 {
		cfg.Runs = 1
	}

	e := &Engine{
		cfg:   cfg,
		drv:   drv,
		pool:  pool,
		clk:   clk,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		files: newFileList(),
	}

	for i, a := range cfg.AgeDist {
		e.ageBuckets = append(e.ageBuckets, NewAgeBucket(a.CutoffRatio, a.Ideal, i == len(cfg.AgeDist)-1))
	}
	for _, d := range cfg.DirDist {
		e.dirBuckets = append(e.dirBuckets, NewDirBucket(d.Depth, d.Ideal, d.SiblingFanout))
	}
	var cum float64
	for _, s := range cfg.SizeDist {
		e.globalSizes = append(e.globalSizes, NewSizeBucket(s.ByteSize, s.Ideal))
		cum += s.Ideal
		e.sizeCumulative = append(e.sizeCumulative, cum)
	}
	// T depends on K, the rapid-fill tick count, so it isn't known
	// until rapidFill has run; see rapidFill.
	return e, nil
}

// ageRatios returns each age bucket's descending re-aging ratio, in
// bucket order, for calculateT and reAge.
func (e *Engine) ageRatios() []float64 {
	out := make([]float64, len(e.ageBuckets))
	for i, ab := range e.ageBuckets {
		out[i] = ab.Ratio
	}
	return out
}

// ageIdeals returns each age bucket's target population fraction, in
// bucket order, for calculateT.
func (e *Engine) ageIdeals() []float64 {
	out := make([]float64, len(e.ageBuckets))
	for i, ab := range e.ageBuckets {
		out[i] = ab.Ideal
	}
	return out
}

// Run executes the rapid-fill and stable-aging phases and returns
// summary statistics once the run halts.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	start := e.clk.Now()
	if !e.rapidFilled {
		if err := e.rapidFill(ctx); err != nil {
			return Stats{}, fmt.Errorf("rapid fill: %w", err)
		}
		e.rapidFilled = true
	}
	pValue, err := e.stableAge(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stable aging: %w", err)
	}
	return Stats{
		TotalFiles:     e.files.Len(),
		Ticks:          e.tick,
		T:              e.T,
		HaltReason:     e.haltReason,
		FinalPValue:    pValue,
		OverwriteCount: float64(e.bytesCreated) / float64(e.cfg.DiskBytes),
		WorkloadBytes:  e.liveBytes,
		Elapsed:        e.clk.Now().Sub(start),
	}, nil
}

// Rearm gives a halted engine a fresh budget and lets it keep aging
// from wherever it left off, driving --query-before-quit's "continue
// with a new confidence level and additional run/runtime budget?"
// prompt without re-running rapid fill or losing the live population.
func (e *Engine) Rearm(confidence float64, additionalRuns int64, additionalRuntime time.Duration) {
	e.cfg.Confidence = confidence
	e.cfg.Runs += additionalRuns
	e.cfg.MaxRuntime += additionalRuntime
	e.haltReason = ""
}

// rapidFill samples a size class by cumulative-distribution draw and
// creates files at depth 0 until the live byte volume reaches
// DiskBytes*Utilization. Every create advances tick, exactly like a
// stable-aging operation does; once the fill finishes, the tick count
// so far becomes K, the rapid-fill workload size calculateT sizes the
// aging phase against.
func (e *Engine) rapidFill(ctx context.Context) error {
	target := int64(float64(e.cfg.DiskBytes) * e.cfg.Utilization)
	logger.Infof("rapid-fill: filling to %d of %d bytes", target, e.cfg.DiskBytes)

	root := findDirBucketByDepth(e.dirBuckets, 0)
	if root == nil {
		return fmt.Errorf("aging: no depth-0 dir bucket configured")
	}
	for e.liveBytes < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.tick++
		sb := e.sampleSizeBucket()
		if err := e.createFileInBucket(e.tick, sb, root); err != nil {
			return err
		}
	}

	e.K = e.tick
	e.T = calculateT(e.K, e.ageRatios(), e.ageIdeals())
	e.reAge(e.T)
	return nil
}

// sampleSizeBucket draws a size bucket by cumulative-distribution
// sampling over the ideal size fractions.
func (e *Engine) sampleSizeBucket() *SizeBucket {
	draw := e.rng.Float64()
	for i, cum := range e.sizeCumulative {
		if draw <= cum {
			return e.globalSizes[i]
		}
	}
	return e.globalSizes[len(e.globalSizes)-1]
}

// stableAge alternates creates and deletes, re-aging the population
// every tick, until the tick count reaches the convergence horizon T,
// the run-cap byte budget is exhausted, the chi-squared probe clears
// cfg.Confidence, the wall clock expires, or ctx is canceled.
func (e *Engine) stableAge(ctx context.Context) (float64, error) {
	runCap := e.cfg.Runs * e.cfg.DiskBytes
	deadline := time.Time{}
	if e.cfg.MaxRuntime > 0 {
		deadline = e.clk.Now().Add(e.cfg.MaxRuntime)
	}

	var pValue float64
	for {
		e.tick++
		if err := ctx.Err(); err != nil {
			e.haltReason = HaltCanceled
			return pValue, nil
		}
		if err := e.performOp(tossCoin(e.rng, defaultCreateBias)); err != nil {
			return pValue, err
		}
		e.reAge(e.T)

		accuracyMet := false
		if e.cfg.Confidence > 0 && e.tick%probeEvery == 0 {
			accuracyMet, pValue = e.probe()
		}

		switch {
		case e.tick >= e.T:
			e.haltReason = HaltConvergence
			return pValue, nil
		case e.bytesCreated >= runCap:
			e.haltReason = HaltWorkload
			return pValue, nil
		case !deadline.IsZero() && !e.clk.Now().Before(deadline):
			e.haltReason = HaltExecTime
			return pValue, nil
		case accuracyMet:
			e.haltReason = HaltAccuracy
			return pValue, nil
		}

		if e.cfg.Idle {
			time.Sleep(idleDelay)
		}
	}
}

// probe runs the chi-squared goodness-of-fit test across the age
// buckets' ideal-vs-actual population fractions, at a fixed
// len(ageBuckets)-1 degrees of freedom, and reports whether the fit is
// tight enough to clear cfg.Confidence. goodness is the CDF of the
// observed statistic, for Stats.FinalPValue; smaller means a closer
// fit. cfg.Confidence is itself evaluated through the same CDF, not
// used as a probability threshold directly - this mirrors the original
// tool precomputing goodness_measure = cdf(dist, confidence) once and
// comparing the run's own cdf(dist, chi_2) against it.
func (e *Engine) probe() (accuracyMet bool, goodness float64) {
	total := e.files.Len()
	ideal := make([]float64, len(e.ageBuckets))
	actual := make([]float64, len(e.ageBuckets))
	for i, ab := range e.ageBuckets {
		ideal[i] = ab.Ideal
		actual[i] = ab.ActualFraction(total)
	}
	n := len(e.ageBuckets)
	goodness = chiSquaredCDF(n, chiSquaredStat(ideal, actual))
	return goodness <= chiSquaredCDF(n, e.cfg.Confidence), goodness
}

// performOp runs one stable-aging operation. A requested create that
// can't find a size bucket fitting within the disk capacity budget is
// converted into a delete instead, matching the original tool's
// create_succeeded=-1 fallback in performOp/createFile.
func (e *Engine) performOp(create bool) error {
	if create {
		created, err := e.createFile(e.tick)
		if err != nil {
			return err
		}
		if created {
			return nil
		}
		logger.Infof("cannot create a single file, exhausted all options; converting to delete")
	}
	return e.deleteFile()
}

// createFile picks the size bucket farthest from its ideal fraction
// that still fits within the disk capacity budget, and the most
// under-represented directory bucket, materializes a file there via
// the backend, and records it in every bucket plus the global file
// list. New files always join the youngest age bucket. created is
// false, with a nil error, when every size bucket would push live
// bytes at or past DiskBytes - the caller converts that into a delete.
func (e *Engine) createFile(tick int64) (created bool, err error) {
	total := e.files.Len()
	sb := pickSizeBucket(e.globalSizes, total, e.liveBytes, e.cfg.DiskBytes)
	if sb == nil {
		return false, nil
	}
	db := pickDirBucket(e.dirBuckets, total)
	if db == nil {
		return false, fmt.Errorf("aging: no dir buckets configured")
	}
	if err := e.createFileInBucket(tick, sb, db); err != nil {
		return false, err
	}
	return true, nil
}

// createFileInBucket materializes a file of sb's size under db's
// directory chain. Directories are named dN by depth level, nested one
// per level (d1/d2/.../dN); the file itself is named after its own
// logical tick number. When db configures a sibling fanout, each file
// additionally rolls a fresh random sibling subdirectory in
// [1, SiblingFanout] instead of reusing a fixed dN leaf.
func (e *Engine) createFileInBucket(tick int64, sb *SizeBucket, db *DirBucket) error {
	dir := db.PathPrefix
	if db.SiblingFanout > 0 && db.Depth > 0 {
		sibling := e.rng.Intn(db.SiblingFanout) + 1
		dir = path.Join(dir, fmt.Sprintf("d%d", sibling))
	}
	filePath := path.Join(dir, fmt.Sprintf("%d", tick))

	if err := e.runOnPool(func() error {
		if dir != "" {
			if err := e.drv.MkdirAll(dir); err != nil {
				return err
			}
		}
		return e.drv.Create(filePath, sb.ByteSize)
	}); err != nil {
		return err
	}

	f := NewFile(filePath, sb.ByteSize, db.Depth, tick)
	e.files.Add(f)
	sb.AddFile(f)
	db.AddFile(f)
	youngest := e.ageBuckets[0]
	youngest.AddFile(f, sb.Ideal, db.Ideal)
	e.liveBytes += sb.ByteSize
	e.bytesCreated += sb.ByteSize
	return nil
}

// deleteFile picks a victim by intersecting three GLOBAL views of the
// live population: the age view from its over-represented end, the
// size view from its under-represented end, and the dir view from its
// over-represented end. For each (age, size, dir) combination it asks
// the age bucket's own nested size/dir chain whether that cell holds a
// file, and takes the first one that does - so a bucket that tops one
// axis but is empty along another doesn't stall deletion. This mirrors
// the original's ordered `size_buckets`/`dir_buckets` walk together
// with `AgeBucket::getFileToDelete(size, depth)`.
func (e *Engine) deleteFile() error {
	total := e.files.Len()
	if total == 0 {
		return nil
	}
	for _, ab := range orderByKey(e.ageBuckets, func(b *AgeBucket) float64 { return b.Key(total) }) {
		for _, sb := range orderByKey(e.globalSizes, func(b *SizeBucket) float64 { return b.Key(total) }) {
			for _, db := range orderByKey(e.dirBuckets, func(b *DirBucket) float64 { return b.Key(total) }) {
				f := ab.FileToDelete(sb.ByteSize, db.Depth)
				if f == nil {
					continue
				}
				return e.removeFile(f, ab)
			}
		}
	}
	return fmt.Errorf("aging: no file found to delete despite %d live files", total)
}

// removeFile physically deletes f via the backend and evicts it from
// every bucket that tracks it: ab and its nested size/dir buckets, and
// the top-level size/dir buckets used for creation-side steering and
// distribution dumps.
func (e *Engine) removeFile(f *File, ab *AgeBucket) error {
	if err := e.runOnPool(func() error { return e.drv.Remove(f.Path) }); err != nil {
		return err
	}
	ab.RemoveFile(f)
	if f.dirBucket != nil {
		f.dirBucket.RemoveFile(f)
	}
	if f.sizeBucket != nil {
		f.sizeBucket.RemoveFile(f)
	}
	e.files.Remove(f)
	e.liveBytes -= f.Size
	return nil
}

// reAge migrates every file whose birth tick falls before its current
// age bucket's cutoff (Ratio*clockTick) into the next-older bucket.
// clockTick is the aging phase's fixed convergence horizon T for every
// call stable aging makes; tests may pass an arbitrary future tick
// directly to check re-aging in isolation. A migrated file is
// re-examined against the next bucket's cutoff within the same call,
// so a single reAge can cascade a file through more than one bucket.
func (e *Engine) reAge(clockTick int64) {
	for i := 0; i < len(e.ageBuckets)-1; i++ {
		cur := e.ageBuckets[i]
		next := e.ageBuckets[i+1]
		cutoff := int64(cur.Ratio * float64(clockTick))
		for _, f := range cur.Files() {
			if f.BirthTick >= cutoff {
				continue
			}
			sizeIdeal, dirIdeal := e.idealFor(f)
			cur.RemoveFile(f)
			next.AddFile(f, sizeIdeal, dirIdeal)
		}
	}
}

// idealFor looks up f's target size and directory-depth ideal
// fractions from the engine's global buckets, for handing to
// AgeBucket.AddFile when a file migrates between age buckets.
func (e *Engine) idealFor(f *File) (sizeIdeal, dirIdeal float64) {
	if sb := findSizeBucket(e.globalSizes, f.Size); sb != nil {
		sizeIdeal = sb.Ideal
	}
	if db := findDirBucketByDepth(e.dirBuckets, f.Depth); db != nil {
		dirIdeal = db.Ideal
	}
	return sizeIdeal, dirIdeal
}

// runOnPool hands fn to the worker pool and blocks until it finishes,
// returning its error. The engine therefore waits for each operation's
// I/O before it updates its bookkeeping, and never has more than one
// of its own tasks in flight at a time.
func (e *Engine) runOnPool(fn func() error) error {
	done := make(chan error, 1)
	e.pool.Schedule(false, workerpool.TaskFunc(func() { done <- fn() }))
	return <-done
}

// SizeRows reports each size bucket's ideal and actual population
// fraction, for dumping to the --size-out file.
func (e *Engine) SizeRows() []distfile.Row {
	total := e.files.Len()
	rows := make([]distfile.Row, len(e.globalSizes))
	for i, sb := range e.globalSizes {
		rows[i] = distfile.Row{
			Label:  fmt.Sprintf("%d", sb.ByteSize),
			Ideal:  sb.Ideal,
			Actual: sb.ActualFraction(total),
		}
	}
	return rows
}

// AgeRows reports each age bucket's ideal and actual population
// fraction, for dumping to the --age-out file.
func (e *Engine) AgeRows() []distfile.Row {
	total := e.files.Len()
	rows := make([]distfile.Row, len(e.ageBuckets))
	for i, ab := range e.ageBuckets {
		rows[i] = distfile.Row{
			Label:  fmt.Sprintf("%v", ab.CutoffRatio),
			Ideal:  ab.Ideal,
			Actual: ab.ActualFraction(total),
		}
	}
	return rows
}

// DirRows reports each directory-depth bucket's ideal and actual
// population fraction, for dumping to the --dir-out file.
func (e *Engine) DirRows() []distfile.Row {
	total := e.files.Len()
	rows := make([]distfile.Row, len(e.dirBuckets))
	for i, db := range e.dirBuckets {
		rows[i] = distfile.Row{
			Label:  fmt.Sprintf("%d", db.Depth),
			Ideal:  db.Ideal,
			Actual: db.ActualFraction(total),
		}
	}
	return rows
}
