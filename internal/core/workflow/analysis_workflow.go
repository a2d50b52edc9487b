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

// Package workflow defines the high-level business logic orchestrations,
// combining the pipeline commands into coherent chains. This file implements
// the storyline analysis workflow, the only pipeline this service runs.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/commands"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/core/services"
	"github.com/i-kohan/series-automation/internal/media"
)

// InferenceClients is the subset of the AI container the workflow needs,
// expressed as interfaces so tests can swap in fakes.
type InferenceClients struct {
	Captioner     ai.Captioner
	Transcriber   ai.Transcriber
	TextEmbedder  ai.TextEmbedder
	ImageEmbedder ai.ImageEmbedder
	Summarizer    ai.Summarizer // Nil unless the generative naming strategy is active.
}

// AnalysisWorkflow orchestrates the full storyline analysis of one video:
// probing, scene detection, per-scene audio and visual feature extraction,
// profile embedding, storyline assignment, naming, entity matching, and
// result persistence.
type AnalysisWorkflow struct {
	cor.BaseCommand
	config   *config.Config
	toolbox  *media.Toolbox
	clients  *InferenceClients
	registry *services.JobRegistry
	store    *services.ResultStore
	roster   *services.RosterProvider
	matches  *services.MatchService
	chain    cor.Chain
}

// Execute runs the workflow by invoking the underlying chain.
func (w *AnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the command sequence. Each command's output pipes
// into the next via the chain's CtxIn/CtxOut mechanism; side data (request,
// video info, scene list) rides along under well-known parameter names.
func (w *AnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Validate the video and capture its container metadata.
	out.AddCommand(commands.NewVideoProbe("probe-video", w.toolbox))

	// Step 2: Find cut boundaries and build the scene list.
	out.AddCommand(commands.NewSceneDetector("detect-scenes", w.toolbox, &w.config.SceneDetection))

	// Step 3: Transcripts and audio descriptors per scene. Runs before the
	// visual pass so silent scenes are already settled when progress enters
	// the expensive phase.
	out.AddCommand(commands.NewAudioExtractor("extract-audio", w.toolbox, w.clients.Transcriber, &w.config.AudioAnalysis))

	// Step 4: Captions and visual embeddings, fanned out over a worker pool.
	out.AddCommand(commands.NewVisualExtractor(
		"extract-visuals",
		w.toolbox,
		w.clients.Captioner,
		w.clients.ImageEmbedder,
		&w.config.FrameAnalysis,
		w.config.Application.ThreadPoolSize))

	// Step 5: Fuse captions and transcripts into the clustering profiles.
	out.AddCommand(commands.NewProfileBuilder("build-profiles", w.clients.TextEmbedder))

	// Step 6: Partition the scenes into storylines.
	out.AddCommand(commands.NewStorylineAssigner("assign-storylines"))

	// Step 7: Name and describe each storyline.
	out.AddCommand(commands.NewStorylineNamer("name-storylines", w.clients.Summarizer))

	// Step 8: Bind mentions to the character roster.
	out.AddCommand(commands.NewEntityMatch("match-entities", w.roster, w.matches, &w.config.Matching))

	// Step 9: Assemble and persist the final result.
	out.AddCommand(commands.NewResultAssembly("assemble-result"))
	out.AddCommand(commands.NewResultPersist("persist-result", w.store))

	w.chain = out
}

// Run executes the workflow for one request and settles the job in the
// registry. It is the goroutine body the HTTP handler spawns per accepted
// analysis request.
func (w *AnalysisWorkflow) Run(ctx context.Context, request *model.AnalysisRequest) {
	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()

	chainCtx.SetContext(ctx)
	chainCtx.SetProgressReporter(w.registry.Updater(request.TaskID))
	chainCtx.Add(cor.CtxIn, request)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		messages := make([]string, 0, len(chainCtx.GetErrors()))
		for name, err := range chainCtx.GetErrors() {
			messages = append(messages, fmt.Sprintf("%s: %v", name, err))
			slog.Error("analysis step failed", "task_id", request.TaskID, "step", name, "error", err)
		}
		w.registry.Fail(request.TaskID, strings.Join(messages, "; "))
		return
	}

	result, ok := chainCtx.Get(cor.CtxIn).(*model.AnalysisResult)
	if !ok {
		w.registry.Fail(request.TaskID, "workflow produced no result")
		return
	}
	w.registry.Complete(request.TaskID, result)
	slog.Info("analysis complete",
		"task_id", request.TaskID,
		"video", request.VideoFilename,
		"storylines", len(result.Storylines),
		"scenes", result.TotalScenes)
}

// NewAnalysisWorkflow wires the workflow with its collaborators and builds
// the command chain.
func NewAnalysisWorkflow(
	cfg *config.Config,
	toolbox *media.Toolbox,
	clients *InferenceClients,
	registry *services.JobRegistry,
	store *services.ResultStore,
	roster *services.RosterProvider,
	matches *services.MatchService) *AnalysisWorkflow {
	w := &AnalysisWorkflow{
		BaseCommand: *cor.NewBaseCommand("analysis-pipeline"),
		config:      cfg,
		toolbox:     toolbox,
		clients:     clients,
		registry:    registry,
		store:       store,
		roster:      roster,
		matches:     matches,
	}
	w.initializeChain()
	return w
}
