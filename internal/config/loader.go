// Copyright 2025 Series Automation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file implements the hierarchical configuration loader. It first reads a
// base configuration file and then overwrites values with a second,
// environment-specific file (e.g. .env.local.toml, .env.test.toml) selected by
// an environment variable. Finally a small set of operational knobs can be
// overridden directly from the environment, which is how deployments tune the
// analyzer without editing the TOML files.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileBaseName  = ".env"                   // Base name for configuration files (".env.toml").
	ConfigFileExtension = ".toml"                  // Extension for configuration files.
	ConfigSeparator     = "."                      // Separator in overlay file names (".env.local.toml").
	EnvConfigFilePrefix = "ANALYZER_CONFIG_PREFIX" // Environment variable naming the config directory.
	EnvConfigRuntime    = "ANALYZER_RUNTIME"       // Environment variable naming the runtime ("local", "test", "prod").

	// Per-knob environment overrides applied after the TOML files.
	EnvFramesPerScene         = "FRAMES_PER_SCENE"
	EnvMinSceneScoreThreshold = "MIN_SCENE_SCORE_THRESHOLD"
	EnvCharacterMatching      = "ENABLE_CHARACTER_MATCHING"
	EnvKeywordMatching        = "ENABLE_KEYWORD_MATCHING"
)

// fileExists reports whether a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates cfg from the base configuration file and then the
// environment-specific overlay, if either exists. Values from the overlay win.
// After the files are read, ApplyEnvOverrides is run so that the documented
// environment knobs always take precedence.
func LoadConfig(cfg *Config) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}

	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = "test"
	}

	baseFile := prefix + ConfigFileBaseName + ConfigFileExtension
	envFile := prefix + ConfigFileBaseName + ConfigSeparator + runtime + ConfigFileExtension

	if fileExists(baseFile) {
		if _, err := toml.DecodeFile(baseFile, cfg); err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseFile, err)
		}
	}

	if fileExists(envFile) {
		if _, err := toml.DecodeFile(envFile, cfg); err != nil {
			log.Fatalf("failed to decode environment configuration file %s with error: %s", envFile, err)
		}
	}

	ApplyEnvOverrides(cfg)
}

// ApplyEnvOverrides overwrites individual config fields from the documented
// environment variables. Unset or malformed values leave the field untouched.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvFramesPerScene); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FrameAnalysis.FramesPerScene = n
		}
	}
	if v := os.Getenv(EnvMinSceneScoreThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.Matching.MinScore = f
		}
	}
	if v := os.Getenv(EnvCharacterMatching); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Matching.EnableCharacterMatches = b
		}
	}
	if v := os.Getenv(EnvKeywordMatching); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Matching.EnableKeywordMatches = b
		}
	}
}
