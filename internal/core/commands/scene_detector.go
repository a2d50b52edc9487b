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

// This file defines the scene detection command.
//
// Logic Flow:
//  1. Stream the video through ffmpeg as small grayscale frames.
//  2. Score each frame against its predecessor by mean absolute luma delta
//     on the 0-255 scale. A score above the configured threshold declares a
//     cut at that frame.
//  3. Build scenes between consecutive cuts, then merge scenes shorter than
//     the minimum length into the neighbor across their weakest boundary,
//     so a flash frame never survives as its own scene.
//  4. Number the surviving scenes "scene_1".."scene_n" in temporal order and
//     derive their start/end times from the frame rate.
package commands

import (
	"fmt"

	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/media"
)

// SceneDetector finds cut boundaries and produces the scene list every later
// command operates on.
type SceneDetector struct {
	cor.BaseCommand
	toolbox *media.Toolbox
	config  *config.SceneDetection
}

// NewSceneDetector constructs the command.
func NewSceneDetector(name string, toolbox *media.Toolbox, cfg *config.SceneDetection) *SceneDetector {
	return &SceneDetector{
		BaseCommand: *cor.NewBaseCommand(name),
		toolbox:     toolbox,
		config:      cfg,
	}
}

// Execute streams the video, computes the per-frame dissimilarity signal,
// and converts it into the scene list.
func (c *SceneDetector) Execute(context cor.Context) {
	request := context.Get(c.GetInputParam()).(*model.AnalysisRequest)
	info := context.Get(GetVideoInfoParamName()).(*media.VideoInfo)

	context.ReportProgress(0.1, "detecting scenes")

	width, height := c.config.DetectWidth, c.config.DetectHeight
	prev := make([]byte, width*height)
	havePrev := false
	scores := make([]float64, 0, info.FrameCount)

	err := c.toolbox.StreamGrayFrames(context.GetContext(), request.VideoPath, width, height, func(index int, pixels []byte) error {
		if !havePrev {
			scores = append(scores, 0)
			copy(prev, pixels)
			havePrev = true
			return nil
		}
		var total int
		for i, p := range pixels {
			d := int(p) - int(prev[i])
			if d < 0 {
				d = -d
			}
			total += d
		}
		scores = append(scores, float64(total)/float64(len(pixels)))
		copy(prev, pixels)
		return nil
	})
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("decode for scene detection: %w", err))
		return
	}
	if len(scores) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("video %s decoded to zero frames", request.VideoFilename))
		return
	}

	fps := info.FPS
	if fps <= 0 {
		fps = float64(len(scores)) / info.Duration
	}
	scenes := DetectScenes(scores, fps, c.config.Threshold, c.config.MinSceneLength)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.ReportProgress(0.2, fmt.Sprintf("detected %d scenes", len(scenes)))
	context.Add(GetScenesParamName(), scenes)
	context.Add(cor.CtxOut, scenes)
}

// DetectScenes converts a frame-indexed dissimilarity signal into scenes.
// scores[i] is the dissimilarity between frame i-1 and frame i (scores[0]
// must be 0). The result always covers [0, len(scores)) in frames with no
// gaps or overlaps.
func DetectScenes(scores []float64, fps, threshold, minSceneLength float64) []*model.Scene {
	if len(scores) == 0 {
		return nil
	}

	// Cut frames and the score of each boundary.
	type boundary struct {
		frame int
		score float64
	}
	var cuts []boundary
	for i := 1; i < len(scores); i++ {
		if scores[i] >= threshold {
			cuts = append(cuts, boundary{frame: i, score: scores[i]})
		}
	}

	// Frame spans between consecutive cuts; boundaryScores[i] is the score
	// of the boundary between span i and span i+1.
	starts := []int{0}
	var boundaryScores []float64
	for _, cut := range cuts {
		starts = append(starts, cut.frame)
		boundaryScores = append(boundaryScores, cut.score)
	}
	ends := make([]int, len(starts))
	for i := 0; i < len(starts)-1; i++ {
		ends[i] = starts[i+1]
	}
	ends[len(ends)-1] = len(scores)

	// Merge spans shorter than the minimum length into the neighbor across
	// their weakest boundary. Repeats until every span is long enough or a
	// single span remains.
	minFrames := int(minSceneLength * fps)
	for len(starts) > 1 {
		shortest := -1
		for i := range starts {
			if ends[i]-starts[i] < minFrames {
				shortest = i
				break
			}
		}
		if shortest < 0 {
			break
		}
		// Pick the weaker adjacent boundary to dissolve.
		mergeLeft := shortest > 0
		if shortest > 0 && shortest < len(starts)-1 {
			mergeLeft = boundaryScores[shortest-1] <= boundaryScores[shortest]
		}
		if mergeLeft {
			ends[shortest-1] = ends[shortest]
			starts = append(starts[:shortest], starts[shortest+1:]...)
			ends = append(ends[:shortest], ends[shortest+1:]...)
			boundaryScores = append(boundaryScores[:shortest-1], boundaryScores[shortest:]...)
		} else {
			starts[shortest+1] = starts[shortest]
			starts = append(starts[:shortest], starts[shortest+1:]...)
			ends = append(ends[:shortest], ends[shortest+1:]...)
			boundaryScores = append(boundaryScores[:shortest], boundaryScores[shortest+1:]...)
		}
	}

	scenes := make([]*model.Scene, len(starts))
	for i := range starts {
		startTime := float64(starts[i]) / fps
		endTime := float64(ends[i]) / fps
		scenes[i] = &model.Scene{
			ID:         fmt.Sprintf("scene_%d", i+1),
			StartFrame: starts[i],
			EndFrame:   ends[i],
			StartTime:  startTime,
			EndTime:    endTime,
			Duration:   endTime - startTime,
		}
	}
	return scenes
}
