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
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting an aging run reads, populated by
// BindFlags from the 18-flag command line surface.
type Config struct {
	Workload WorkloadConfig `yaml:"workload"`
	Engine   EngineConfig   `yaml:"engine"`
}

// WorkloadConfig describes the target state a run steers toward, and
// where its inputs and outputs live.
type WorkloadConfig struct {
	DiskBytes   int64       `yaml:"disk-bytes"`
	Utilization Fraction    `yaml:"utilization"`
	MountPoint  string      `yaml:"mount-point"`
	AgeInFile   string      `yaml:"age-file"`
	SizeInFile  string      `yaml:"size-file"`
	DirInFile   string      `yaml:"dir-file"`
	AgeOutFile  string      `yaml:"age-out"`
	SizeOutFile string      `yaml:"size-out"`
	DirOutFile  string      `yaml:"dir-out"`
}

// EngineConfig describes how the run itself executes.
type EngineConfig struct {
	Seed            int64       `yaml:"seed"`
	Workers         int         `yaml:"workers"`
	Runs            int64       `yaml:"runs"`
	Fake            bool        `yaml:"fake"`
	Idle            bool        `yaml:"idle"`
	Confidence      Fraction    `yaml:"confidence"`
	QueryBeforeQuit bool        `yaml:"query-before-quit"`
	MaxMinutes      int         `yaml:"max-minutes"`
	Backend         BackendName `yaml:"backend"`
}

// BindFlags registers geriatrix's 18-flag CLI surface on flagSet and
// binds it into a fresh viper instance, the way the corpus's generated
// cfg.BindFlags does for its own flag set.
func BindFlags(flagSet *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	var err error

	bind := func(key string) {
		if err != nil {
			return
		}
		// The flag's own name is the key's last dotted component.
		name := key[strings.LastIndex(key, ".")+1:]
		err = v.BindPFlag(key, flagSet.Lookup(name))
	}

	flagSet.Int64P("disk-bytes", "n", 1<<30, "Total disk capacity, in bytes, the run treats itself as filling.")
	bind("workload.disk-bytes")

	flagSet.Float64P("utilization", "u", 0.8, "Fraction of disk-bytes the rapid-fill phase fills before aging begins.")
	bind("workload.utilization")

	flagSet.Int64P("seed", "r", 1, "PRNG seed. Runs with the same seed and inputs replay identically.")
	bind("engine.seed")

	flagSet.StringP("mount-point", "m", ".", "Directory tree (or backend root) the run ages in place.")
	bind("workload.mount-point")

	flagSet.StringP("age-file", "a", "", "Path to the age-distribution input file.")
	bind("workload.age-file")

	flagSet.StringP("size-file", "s", "", "Path to the size-distribution input file.")
	bind("workload.size-file")

	flagSet.StringP("dir-file", "d", "", "Path to the directory-depth distribution input file.")
	bind("workload.dir-file")

	flagSet.StringP("age-out", "x", "", "Path to write the age distribution's ideal-vs-actual dump. Defaults to stdout.")
	bind("workload.age-out")

	flagSet.StringP("size-out", "y", "", "Path to write the size distribution's ideal-vs-actual dump. Defaults to stdout.")
	bind("workload.size-out")

	flagSet.StringP("dir-out", "z", "", "Path to write the directory-depth distribution's ideal-vs-actual dump. Defaults to stdout.")
	bind("workload.dir-out")

	flagSet.IntP("workers", "t", 4, "Worker-pool width for backend I/O.")
	bind("engine.workers")

	flagSet.Int64P("runs", "i", 1, "Disk-overwrite run cap: stop once this many multiples of disk-bytes have been written.")
	bind("engine.runs")

	flagSet.BoolP("fake", "f", false, "Track bucket state without touching a real filesystem.")
	bind("engine.fake")

	flagSet.BoolP("idle", "p", false, "Inject idle pacing between operations instead of running flat out.")
	bind("engine.idle")

	flagSet.Float64P("confidence", "c", 0.95, "Chi-squared accuracy target the age distribution must clear to converge. 0 disables the probe.")
	bind("engine.confidence")

	flagSet.BoolP("query-before-quit", "q", false, "Prompt interactively to keep aging with a fresh budget once a run halts.")
	bind("engine.query-before-quit")

	flagSet.IntP("max-minutes", "w", 0, "Wall-clock cap on the run, in minutes. 0 means no cap.")
	bind("engine.max-minutes")

	flagSet.StringP("backend", "b", string(BackendPOSIX), "Filesystem backend to age: posix or memfs.")
	bind("engine.backend")

	if err != nil {
		return nil, err
	}
	return v, nil
}
