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
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Workload: WorkloadConfig{
			DiskBytes:   1 << 30,
			Utilization: 0.8,
			MountPoint:  "/tmp/geriatrix",
			SizeInFile:  "sizes.txt",
			AgeInFile:   "ages.txt",
			DirInFile:   "dirs.txt",
		},
		Engine: EngineConfig{
			Workers:    4,
			Runs:       1,
			Confidence: 0.95,
		},
	}
}

func TestValidateConfigAccepts(t *testing.T) {
	assert.NoError(t, ValidateConfig(validConfig()))
}

func TestValidateConfigRejectsNonPositiveDiskBytes(t *testing.T) {
	c := validConfig()
	c.Workload.DiskBytes = 0
	assert.Error(t, ValidateConfig(c))
}

func TestValidateConfigRejectsUtilizationOutOfRange(t *testing.T) {
	c := validConfig()
	c.Workload.Utilization = 1.5
	assert.Error(t, ValidateConfig(c))
}

func TestValidateConfigRequiresDistributionFiles(t *testing.T) {
	c := validConfig()
	c.Workload.SizeInFile = ""
	assert.Error(t, ValidateConfig(c))
}

func TestValidateConfigRequiresAWorker(t *testing.T) {
	c := validConfig()
	c.Engine.Workers = 0
	assert.Error(t, ValidateConfig(c))
}

func TestValidateConfigAllowsZeroConfidence(t *testing.T) {
	c := validConfig()
	c.Engine.Confidence = 0
	assert.NoError(t, ValidateConfig(c))
}

func TestValidateConfigRejectsUnknownBackend(t *testing.T) {
	c := validConfig()
	c.Engine.Backend = "nfs"
	assert.Error(t, ValidateConfig(c))
}

func TestEffectiveBackendFakeOverridesExplicit(t *testing.T) {
	c := &EngineConfig{Backend: BackendPOSIX, Fake: true}
	assert.Equal(t, BackendFake, EffectiveBackend(c))
}

func TestEffectiveBackendDefaultsToPOSIX(t *testing.T) {
	c := &EngineConfig{}
	assert.Equal(t, BackendPOSIX, EffectiveBackend(c))
}
