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

// This file defines the audio feature extractor.
//
// Logic Flow:
//  1. Decode the full audio track once, as mono PCM at the configured
//     sample rate.
//  2. For each scene, slice out its waveform span and gate on RMS energy: a
//     slice below the silence threshold leaves the scene's AudioAnalysis nil
//     and skips transcription entirely.
//  3. Audible slices get numeric descriptors (RMS, zero-crossing rate,
//     spectral centroid, tempo) computed locally, plus a transcript from the
//     speech recognition model.
//
// A video with no audio track at all is valid; every scene simply stays
// silent.
package commands

import (
	"fmt"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/dsp"
	"github.com/i-kohan/series-automation/internal/media"
)

// AudioExtractor enriches scenes with transcripts and audio descriptors.
type AudioExtractor struct {
	cor.BaseCommand
	toolbox     *media.Toolbox
	transcriber ai.Transcriber
	config      *config.AudioAnalysis
}

// NewAudioExtractor constructs the command.
func NewAudioExtractor(name string, toolbox *media.Toolbox, transcriber ai.Transcriber, cfg *config.AudioAnalysis) *AudioExtractor {
	return &AudioExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		toolbox:     toolbox,
		transcriber: transcriber,
		config:      cfg,
	}
}

// Execute decodes the audio track and enriches every audible scene in place.
func (c *AudioExtractor) Execute(context cor.Context) {
	scenes := context.Get(c.GetInputParam()).([]*model.Scene)
	request := context.Get(GetRequestParamName()).(*model.AnalysisRequest)

	context.ReportProgress(0.25, "extracting audio")

	waveform, err := c.toolbox.ExtractWaveform(context.GetContext(), request.VideoPath, c.config.SampleRate)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("extract waveform: %w", err))
		return
	}
	context.Add(GetWaveformParamName(), waveform)

	for i, scene := range scenes {
		slice := media.SliceWaveform(waveform, c.config.SampleRate, scene.StartTime, scene.EndTime)
		analysis := c.analyzeSlice(context, slice)
		scene.AudioAnalysis = analysis
		progress := 0.25 + 0.15*float64(i+1)/float64(len(scenes))
		context.ReportProgress(progress, fmt.Sprintf("transcribed %d/%d scenes", i+1, len(scenes)))
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, scenes)
}

// analyzeSlice computes one scene's AudioAnalysis, or nil for a silent
// slice. A failed transcription degrades to an empty transcript; the numeric
// descriptors are always computed for audible slices.
func (c *AudioExtractor) analyzeSlice(context cor.Context, slice []float64) *model.AudioAnalysis {
	rms := dsp.RMSEnergy(slice)
	if rms < c.config.SilenceThreshold {
		return nil
	}

	analysis := &model.AudioAnalysis{
		AudioFeatures: model.AudioFeatures{
			RMSEnergy:            rms,
			Tempo:                dsp.EstimateTempo(slice, c.config.SampleRate),
			SpectralCentroidMean: dsp.SpectralCentroidMean(slice, c.config.SampleRate),
			ZeroCrossingRate:     dsp.ZeroCrossingRate(slice),
		},
	}

	wav := media.EncodeWAV(slice, c.config.SampleRate)
	if transcription, err := c.transcriber.Transcribe(context.GetContext(), wav); err == nil {
		analysis.Transcript = transcription.Text
		analysis.Language = transcription.Language
	}
	return analysis
}
