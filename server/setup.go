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

// Package main contains the setup and initialization logic for the
// application's state. This file creates the centralized state manager that
// holds all shared dependencies: configuration, inference clients, the job
// registry, the result store, and the analysis workflow itself.
//
// Functions:
//   - SetupOS: Points the configuration loader at the configs directory.
//   - GetConfig: A singleton accessor for the loaded configuration.
//   - InitState: Creates all services, rehydrates persisted results, and
//     wires the analysis workflow.
package main

import (
	"context"
	"log"
	"os"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/services"
	"github.com/i-kohan/series-automation/internal/core/workflow"
	"github.com/i-kohan/series-automation/internal/media"
)

// StateManager holds all the shared dependencies for the application,
// avoiding globals scattered across handlers.
type StateManager struct {
	rootCtx  context.Context
	config   *config.Config
	clients  *ai.ServiceClients
	registry *services.JobRegistry
	store    *services.ResultStore
	matches  *services.MatchService
	analysis *workflow.AnalysisWorkflow
}

// state is the single instance of StateManager for the process.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the TOML files, unless the operator already set them.
func SetupOS() error {
	if os.Getenv(config.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(config.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(config.EnvConfigRuntime) == "" {
		return os.Setenv(config.EnvConfigRuntime, "local")
	}
	return nil
}

// GetConfig provides a singleton instance of the application configuration,
// loading it from the TOML files on first call.
func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up environment: %v\n", err)
		}
		cfg := config.NewConfig()
		config.LoadConfig(cfg)
		state.config = cfg
	}
	return state.config
}

// InitState initializes the entire application state: inference clients, the
// job registry and result store (including rehydration of results persisted
// by a previous process), the roster provider, the match service, and the
// analysis workflow that ties them together.
func InitState(ctx context.Context) {
	state.rootCtx = ctx
	cfg := GetConfig()

	clients, err := ai.NewServiceClients(ctx, cfg)
	if err != nil {
		panic(err)
	}
	state.clients = clients

	store, err := services.NewResultStore(cfg.Storage.ResultDir)
	if err != nil {
		panic(err)
	}
	state.store = store

	state.registry = services.NewJobRegistry()
	store.Rehydrate(state.registry)

	state.matches = services.NewMatchService()
	roster := services.NewRosterProvider(cfg.Storage.RosterDir)

	inference := &workflow.InferenceClients{
		Captioner:     clients,
		Transcriber:   clients,
		TextEmbedder:  clients,
		ImageEmbedder: clients,
	}
	if cfg.NamingStrategy == "generative" {
		for name, model := range clients.NamingModels {
			inference.Summarizer = ai.NewModelSummarizer(name, model)
			break
		}
	}

	state.analysis = workflow.NewAnalysisWorkflow(
		cfg,
		media.NewToolbox(),
		inference,
		state.registry,
		store,
		roster,
		state.matches,
	)
}
