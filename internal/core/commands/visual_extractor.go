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

// This file defines the visual feature extractor, the most expensive step of
// the pipeline.
//
// Logic Flow:
// Scenes are independent once detected, so this command processes them with
// a worker pool.
//
//  1. A `jobs` channel distributes one VisualJob per scene to a configurable
//     number of worker goroutines; a `results` channel carries outcomes back.
//  2. Each worker samples frames evenly across its scene (a single central
//     frame for very short scenes), captions the central frame, and embeds
//     every sampled frame.
//  3. The per-frame embeddings are averaged and L2-normalized into one
//     vector per scene.
//  4. Failures are degraded, not fatal: a scene whose caption or embedding
//     call fails keeps an empty caption or nil embedding and the analysis
//     continues. Only the inability to decode any frame at all is recorded
//     as a workflow error.
package commands

import (
	goctx "context"
	"fmt"
	"math"
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/media"
)

// VisualExtractor captions and embeds every scene using a worker pool.
type VisualExtractor struct {
	cor.BaseCommand
	toolbox         *media.Toolbox
	captioner       ai.Captioner
	embedder        ai.ImageEmbedder
	config          *config.FrameAnalysis
	numberOfWorkers int
}

// NewVisualExtractor constructs the command.
func NewVisualExtractor(
	name string,
	toolbox *media.Toolbox,
	captioner ai.Captioner,
	embedder ai.ImageEmbedder,
	cfg *config.FrameAnalysis,
	numberOfWorkers int) *VisualExtractor {
	return &VisualExtractor{
		BaseCommand:     *cor.NewBaseCommand(name),
		toolbox:         toolbox,
		captioner:       captioner,
		embedder:        embedder,
		config:          cfg,
		numberOfWorkers: numberOfWorkers,
	}
}

// VisualJob carries one scene through the worker pool.
type VisualJob struct {
	ctx       goctx.Context
	span      trace.Span
	scene     *model.Scene
	videoPath string
}

// VisualResponse reports one scene's outcome back to the aggregator.
type VisualResponse struct {
	scene *model.Scene
	err   error
}

// Execute distributes the scenes across the worker pool and waits for all of
// them to be enriched in place.
func (c *VisualExtractor) Execute(context cor.Context) {
	scenes := context.Get(c.GetInputParam()).([]*model.Scene)
	request := context.Get(GetRequestParamName()).(*model.AnalysisRequest)

	var wg sync.WaitGroup
	jobs := make(chan *VisualJob, len(scenes))
	results := make(chan *VisualResponse, len(scenes))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.visualWorker(jobs, results, &wg)
	}

	for i, scene := range scenes {
		jobCtx, jobSpan := c.Tracer.Start(context.GetContext(), fmt.Sprintf("%s_scene_%d", c.GetName(), i+1))
		jobs <- &VisualJob{ctx: jobCtx, span: jobSpan, scene: scene, videoPath: request.VideoPath}
	}
	close(jobs)

	// Consume results as they arrive so progress updates while the pool is
	// still draining.
	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for r := range results {
		completed++
		if r.err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("scene %s: %w", r.scene.ID, r.err))
		}
		progress := 0.4 + 0.4*float64(completed)/float64(len(scenes))
		context.ReportProgress(progress, fmt.Sprintf("analyzed %d/%d scenes", completed, len(scenes)))
	}

	if !context.HasErrors() {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
	}
	context.Add(cor.CtxOut, scenes)
}

// visualWorker drains the jobs channel, enriching each scene in place.
func (c *VisualExtractor) visualWorker(jobs <-chan *VisualJob, results chan<- *VisualResponse, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		err := c.processScene(j)
		if err != nil {
			j.span.SetStatus(codes.Error, "visual extraction failed")
		} else {
			j.span.SetStatus(codes.Ok, "scene analyzed")
		}
		j.span.End()
		results <- &VisualResponse{scene: j.scene, err: err}
	}
}

// processScene samples, captions, and embeds one scene. Caption and
// embedding failures degrade the scene rather than failing it; only a scene
// with no decodable frames returns an error.
func (c *VisualExtractor) processScene(j *VisualJob) error {
	timestamps := SampleTimestamps(j.scene, c.config.FramesPerScene, c.config.MinSceneDuration)

	frames := make([][]byte, 0, len(timestamps))
	for _, ts := range timestamps {
		frame, err := c.toolbox.SampleJPEG(j.ctx, j.videoPath, ts)
		if err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no decodable frames in [%.3f, %.3f)", j.scene.StartTime, j.scene.EndTime)
	}

	central := frames[len(frames)/2]
	if caption, err := c.captioner.Caption(j.ctx, central); err == nil {
		j.scene.Caption = caption
	}

	var sum []float64
	embedded := 0
	for _, frame := range frames {
		vec, err := c.embedder.EmbedImage(j.ctx, frame)
		if err != nil || len(vec) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(vec))
		}
		if len(vec) != len(sum) {
			continue
		}
		for i, v := range vec {
			sum[i] += v
		}
		embedded++
	}
	if embedded > 0 {
		for i := range sum {
			sum[i] /= float64(embedded)
		}
		j.scene.Embedding = L2Normalize(sum)
	}
	return nil
}

// SampleTimestamps returns frame timestamps spread evenly across a scene's
// interior. Scenes shorter than minSceneDuration get a single central
// sample.
func SampleTimestamps(scene *model.Scene, framesPerScene int, minSceneDuration float64) []float64 {
	if framesPerScene < 1 {
		framesPerScene = 1
	}
	if scene.Duration < minSceneDuration || framesPerScene == 1 {
		return []float64{scene.StartTime + scene.Duration/2}
	}
	// Midpoints of framesPerScene equal slices, so samples never land on
	// the cut boundaries themselves.
	out := make([]float64, framesPerScene)
	step := scene.Duration / float64(framesPerScene)
	for i := 0; i < framesPerScene; i++ {
		out[i] = scene.StartTime + step*(float64(i)+0.5)
	}
	return out
}

// L2Normalize scales a vector to unit length. A zero vector is returned
// unchanged.
func L2Normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
