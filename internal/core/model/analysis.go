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

// Package model defines the core data structures for the application. This
// file holds the analysis pipeline's domain objects: scenes produced by cut
// detection, the audio and visual features attached to them, the storylines
// that partition them, and the final immutable AnalysisResult.
package model

import "math"

// Scene is a maximal interval of visually continuous footage bounded by
// detected cuts. Scenes are created by the scene detector with only the time
// and frame fields set, enriched in place by the feature extractors, and are
// treated as immutable once the storyline assigner consumes them.
type Scene struct {
	ID         string  `json:"id"`          // "scene_1", "scene_2", ... in temporal order.
	StartTime  float64 `json:"start_time"`  // Seconds from the start of the video, inclusive.
	EndTime    float64 `json:"end_time"`    // Seconds, exclusive.
	Duration   float64 `json:"duration"`    // EndTime - StartTime.
	StartFrame int     `json:"start_frame"` // First frame index of the scene, inclusive.
	EndFrame   int     `json:"end_frame"`   // Frame index one past the scene, exclusive.

	Caption       string         `json:"caption"`                  // Natural-language description of the central sampled frame.
	Embedding     []float64      `json:"embedding,omitempty"`      // L2-normalized mean of the per-frame visual embeddings.
	AudioAnalysis *AudioAnalysis `json:"audio_analysis,omitempty"` // Nil when the scene's audio is silent.

	// Profile is the fused caption+transcript text embedding consumed by the
	// storyline assigner. It is not part of the wire result.
	Profile []float64 `json:"-"`
}

// AudioAnalysis carries the spoken-word transcript and low-level audio
// descriptors for one scene. Absence of the whole struct means the scene had
// no intelligible audio; an empty transcript with the struct present means
// non-speech audio (e.g. music only).
type AudioAnalysis struct {
	Transcript    string        `json:"transcript"`
	Language      string        `json:"language"`
	AudioFeatures AudioFeatures `json:"audio_features"`
}

// AudioFeatures are the numeric descriptors computed directly from the
// waveform slice of a scene.
type AudioFeatures struct {
	RMSEnergy            float64 `json:"rms_energy"`
	Tempo                float64 `json:"tempo"` // Estimated beats per minute.
	SpectralCentroidMean float64 `json:"spectral_centroid_mean"`
	ZeroCrossingRate     float64 `json:"zero_crossing_rate"`
}

// Storyline is a contiguous, time-ordered group of scenes judged thematically
// coherent. The scenes lists across all storylines of one job partition the
// full scene sequence. StartTime, EndTime and Duration are derived from the
// contained scenes and never set independently.
type Storyline struct {
	ID          string   `json:"id"` // "storyline_1", "storyline_2", ... in temporal order.
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scenes      []*Scene `json:"scenes"`
	Duration    float64  `json:"duration"`
	StartTime   float64  `json:"start_time"`
	EndTime     float64  `json:"end_time"`
	Keywords    []string `json:"keywords"`
	Characters  []string `json:"characters"`
}

// RecalculateBounds derives StartTime, EndTime and Duration from the contained
// scenes. It is a no-op for an empty storyline.
func (s *Storyline) RecalculateBounds() {
	if len(s.Scenes) == 0 {
		return
	}
	start := math.Inf(1)
	end := math.Inf(-1)
	for _, sc := range s.Scenes {
		start = math.Min(start, sc.StartTime)
		end = math.Max(end, sc.EndTime)
	}
	s.StartTime = start
	s.EndTime = end
	s.Duration = end - start
}

// ResultMetadata records technical details of the source video and the run.
type ResultMetadata struct {
	FPS                 float64 `json:"fps"`
	Size                [2]int  `json:"size"` // [width, height]
	AnalysisTimeSeconds float64 `json:"analysis_time_seconds"`
}

// AnalysisResult is the final output of one completed job. It is immutable
// once written.
type AnalysisResult struct {
	VideoFilename string         `json:"video_filename"`
	Duration      float64        `json:"duration"`
	TotalScenes   int            `json:"total_scenes"`
	Storylines    []*Storyline   `json:"storylines"`
	Timestamp     string         `json:"timestamp"` // RFC 3339 time the analysis finished.
	Metadata      ResultMetadata `json:"metadata"`
}
