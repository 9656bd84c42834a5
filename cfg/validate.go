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

import "fmt"

// ValidateConfig returns a non-nil error if config could not possibly
// describe a runnable aging workload.
func ValidateConfig(config *Config) error {
	if config.Workload.DiskBytes <= 0 {
		return fmt.Errorf("disk-bytes must be positive, got %d", config.Workload.DiskBytes)
	}
	if config.Workload.Utilization <= 0 || config.Workload.Utilization > 1 {
		return fmt.Errorf("utilization must be in (0, 1], got %v", config.Workload.Utilization)
	}
	if config.Workload.MountPoint == "" {
		return fmt.Errorf("mount-point is required")
	}
	if config.Workload.SizeInFile == "" {
		return fmt.Errorf("size-file is required")
	}
	if config.Workload.AgeInFile == "" {
		return fmt.Errorf("age-file is required")
	}
	if config.Workload.DirInFile == "" {
		return fmt.Errorf("dir-file is required")
	}
	if config.Engine.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", config.Engine.Workers)
	}
	if config.Engine.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", config.Engine.Runs)
	}
	if config.Engine.Confidence < 0 || config.Engine.Confidence > 1 {
		return fmt.Errorf("confidence must be in [0, 1], got %v", config.Engine.Confidence)
	}
	if config.Engine.MaxMinutes < 0 {
		return fmt.Errorf("max-minutes must not be negative, got %d", config.Engine.MaxMinutes)
	}
	switch config.Engine.Backend {
	case "", BackendPOSIX, BackendMemFS, BackendFake:
	default:
		return fmt.Errorf("backend must be posix or memfs, got %q", config.Engine.Backend)
	}
	return nil
}
