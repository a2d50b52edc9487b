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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	test "github.com/i-kohan/series-automation/internal/testutil"
)

func namerInput() []*model.Storyline {
	return []*model.Storyline{
		{
			ID: "storyline_1",
			Scenes: []*model.Scene{
				{Caption: "a witcher rides through a forest", StartTime: 0, EndTime: 12},
			},
			StartTime: 0, EndTime: 12,
		},
		{
			ID: "storyline_2",
			Scenes: []*model.Scene{
				{StartTime: 12, EndTime: 30},
			},
			StartTime: 12, EndTime: 30,
		},
	}
}

func TestStorylineNamerTemplateStrategy(t *testing.T) {
	storylines := namerInput()

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, storylines)

	namer := NewStorylineNamer("name-storylines", nil)
	namer.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors())

	assert.Equal(t, "Storyline 1", storylines[0].Name)
	assert.Equal(t, "a witcher rides through a forest", storylines[0].Description)

	// A storyline with no scene text falls back to its time span.
	assert.Equal(t, "Storyline 2", storylines[1].Name)
	assert.Equal(t, "Scenes from 12.0s to 30.0s", storylines[1].Description)
}

func TestStorylineNamerGenerativeStrategy(t *testing.T) {
	storylines := namerInput()

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, storylines)

	summarizer := &test.FakeSummarizer{
		Response: `{"name": "The Long Ride", "description": "A witcher crosses the wilds."}`,
	}
	namer := NewStorylineNamer("name-storylines", summarizer)
	namer.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors())

	assert.Equal(t, "The Long Ride", storylines[0].Name)
	assert.Equal(t, "A witcher crosses the wilds.", storylines[0].Description)

	// The prompt carries the scene evidence.
	require.NotEmpty(t, summarizer.Prompts)
	assert.Contains(t, summarizer.Prompts[0], "a witcher rides through a forest")
	assert.Contains(t, summarizer.Prompts[0], "[0.0s-12.0s]")

	// The few-shot example pairs its scene evidence with its JSON answer.
	assert.Contains(t, summarizer.Prompts[0], "The Ambush at the Crossing")
	assert.Contains(t, summarizer.Prompts[0], "A line of trucks moves along a dirt road")
}

func TestStorylineNamerDegradesOnBadModelOutput(t *testing.T) {
	storylines := namerInput()[:1]

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, storylines)

	summarizer := &test.FakeSummarizer{Response: "not json at all"}
	namer := NewStorylineNamer("name-storylines", summarizer)
	namer.Execute(chainCtx)

	// Unparseable model output falls back to the template strategy instead
	// of failing the job.
	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, "Storyline 1", storylines[0].Name)
}
