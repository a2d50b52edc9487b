// Copyright 2025 Series Automation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/media"
	test "github.com/i-kohan/series-automation/internal/testutil"
)

const audioSampleRate = 16000

// audioConfig is the extractor configuration the tests run with.
func audioConfig() *config.AudioAnalysis {
	return &config.AudioAnalysis{SampleRate: audioSampleRate, SilenceThreshold: 1e-4}
}

// tone returns seconds of a sine at the given frequency and amplitude.
func tone(freq, amplitude, seconds float64) []float64 {
	n := int(seconds * audioSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/audioSampleRate)
	}
	return samples
}

func TestAnalyzeSliceSilenceGate(t *testing.T) {
	extractor := NewAudioExtractor("extract-audio", nil, &test.FakeTranscriber{}, audioConfig())

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()

	// A slice below the silence threshold yields no analysis at all.
	assert.Nil(t, extractor.analyzeSlice(chainCtx, make([]float64, audioSampleRate)))

	// An audible slice gets the numeric descriptors and a transcript slot.
	analysis := extractor.analyzeSlice(chainCtx, tone(440, 0.5, 1))
	require.NotNil(t, analysis)
	assert.InDelta(t, 0.5/math.Sqrt2, analysis.AudioFeatures.RMSEnergy, 1e-3)
	assert.Greater(t, analysis.AudioFeatures.ZeroCrossingRate, 0.0)
	assert.InDelta(t, 440.0, analysis.AudioFeatures.SpectralCentroidMean, 50.0)
}

func TestAudioExtractorLeavesSilentScenesNil(t *testing.T) {
	toolbox := media.NewToolbox()
	if _, err := exec.LookPath(toolbox.FFmpegPath); err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}

	// Two seconds of silence followed by two seconds of tone, so the scene
	// boundaries line up with the silence gate.
	samples := append(make([]float64, 2*audioSampleRate), tone(440, 0.5, 2)...)
	wavPath := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(wavPath, media.EncodeWAV(samples, audioSampleRate), 0o644))

	scenes := []*model.Scene{
		{ID: "scene_1", StartTime: 0, EndTime: 2, Duration: 2, Caption: "an empty hallway", Embedding: []float64{1, 0}},
		{ID: "scene_2", StartTime: 2, EndTime: 4, Duration: 2},
	}
	transcriber := &test.FakeTranscriber{Transcripts: []string{"враг у ворот"}}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(GetRequestParamName(), &model.AnalysisRequest{TaskID: "task-audio", VideoPath: wavPath})
	chainCtx.Add(cor.CtxIn, scenes)

	extractor := NewAudioExtractor("extract-audio", toolbox, transcriber, audioConfig())
	extractor.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors(), "chain errors: %v", chainCtx.GetErrors())

	// The silent scene carries no audio analysis while its visual features
	// stay untouched.
	assert.Nil(t, scenes[0].AudioAnalysis)
	assert.Equal(t, "an empty hallway", scenes[0].Caption)
	assert.Equal(t, []float64{1, 0}, scenes[0].Embedding)

	// The audible scene is transcribed and measured. Only it reaches the
	// speech model.
	require.NotNil(t, scenes[1].AudioAnalysis)
	assert.Equal(t, "враг у ворот", scenes[1].AudioAnalysis.Transcript)
	assert.Equal(t, "en", scenes[1].AudioAnalysis.Language)
	assert.Greater(t, scenes[1].AudioAnalysis.AudioFeatures.RMSEnergy, 0.3)
	assert.Equal(t, 1, transcriber.Calls)

	waveform := chainCtx.Get(GetWaveformParamName()).([]float64)
	assert.Len(t, waveform, 4*audioSampleRate)
}
