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
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/saurabhkadekodi/geriatrix/cfg"
)

var (
	cliViper *viper.Viper
	cliObj   cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "geriatrix [flags]",
	Short: "Age a directory tree toward a target size, age, and depth distribution",
	Long: `geriatrix rapid-fills a directory tree with files and then repeatedly
creates and deletes them to steer the live population toward a target
distribution across file size, file age, and directory depth, the way a
filesystem accumulates and sheds files over months of real use.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateConfig(&cliObj); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return runAging(cmd.Context(), &cliObj)
	},
}

// Execute runs the root command; a non-nil return from it exits the
// process with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	var err error
	if cliViper, err = cfg.BindFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "error binding flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Config's fields carry their flag-style key names in yaml tags.
	useYAMLTags := func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }
	if err := cliViper.Unmarshal(&cliObj, viper.DecodeHook(cfg.DecodeHook()), useYAMLTags); err != nil {
		fmt.Fprintf(os.Stderr, "error unmarshaling flags: %v\n", err)
		os.Exit(1)
	}
}
