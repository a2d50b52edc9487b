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
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	test "github.com/i-kohan/series-automation/internal/testutil"
)

type failingEmbedder struct{}

func (failingEmbedder) EmbedText(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("embedding backend unavailable")
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func TestSceneTextFusesCaptionAndTranscript(t *testing.T) {
	scene := &model.Scene{
		Caption:       "  a castle at dawn ",
		AudioAnalysis: &model.AudioAnalysis{Transcript: " враг у ворот "},
	}
	assert.Equal(t, "a castle at dawn враг у ворот", SceneText(scene))

	assert.Equal(t, "a castle at dawn", SceneText(&model.Scene{Caption: "a castle at dawn"}))
	assert.Equal(t, "", SceneText(&model.Scene{}))
	assert.Equal(t, "", SceneText(&model.Scene{AudioAnalysis: &model.AudioAnalysis{Transcript: "   "}}))
}

func TestProfileBuilderEmbedsSceneText(t *testing.T) {
	scenes := []*model.Scene{
		{ID: "scene_1", Caption: "Геральт обнажает меч"},
		{ID: "scene_2", Caption: "Геральт обнажает меч"},
		{ID: "scene_3", Caption: "Цири бежит через лес"},
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, scenes)

	builder := NewProfileBuilder("build-profiles", &test.FakeTextEmbedder{Dim: 8})
	builder.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors())

	for _, scene := range scenes {
		require.Len(t, scene.Profile, 8)
		assert.InDelta(t, 1.0, norm(scene.Profile), 1e-9)
	}
	// Identical scene text embeds to an identical profile.
	assert.Equal(t, scenes[0].Profile, scenes[1].Profile)
	assert.NotEqual(t, scenes[0].Profile, scenes[2].Profile)
}

func TestProfileBuilderTextlessSceneFallsBackToVisuals(t *testing.T) {
	visual := []float64{0, 0.6, 0.8}
	scenes := []*model.Scene{
		{ID: "scene_1", Caption: "a witcher rides through a forest"},
		{ID: "scene_2", Embedding: visual},
		{ID: "scene_3"},
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, scenes)

	builder := NewProfileBuilder("build-profiles", &test.FakeTextEmbedder{Dim: 8})
	builder.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors())

	assert.Len(t, scenes[0].Profile, 8)
	assert.Equal(t, visual, scenes[1].Profile)
	// No text and no visual embedding leaves the profile empty.
	assert.Nil(t, scenes[2].Profile)
}

func TestProfileBuilderReportsEmbedderFailure(t *testing.T) {
	scenes := []*model.Scene{{ID: "scene_1", Caption: "a castle at dawn"}}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, scenes)

	builder := NewProfileBuilder("build-profiles", failingEmbedder{})
	builder.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, scenes[0].Profile)
}
