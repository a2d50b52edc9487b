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

// This file defines the storyline namer. Two strategies exist:
//
//   - template: deterministic names ("Storyline 1", "Storyline 2", ...)
//     with a description lifted from the group's scene text. Always
//     available, used as the fallback.
//   - generative: a prompt is rendered per storyline with the scene
//     evidence and a few-shot example, sent to the configured naming model,
//     and parsed as JSON. Any failure degrades that storyline to the
//     template strategy rather than failing the job.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
)

// namingPrompt is the per-storyline prompt for the generative strategy.
const namingPrompt = `You are naming one storyline of a television episode.
A storyline is a consecutive run of scenes that belong together thematically.

For example, given this scene evidence:
{{.EXAMPLE_SCENES}}
the correct reply is only this JSON object:
{{.EXAMPLE_JSON}}

The name must be short (at most eight words) and the description one or two
sentences. Use the language the scene evidence is written in. Reply with only
a JSON object in the same shape.

Scene evidence:
{{.SCENES}}`

// StorylineNamer fills in the Name and Description of every storyline.
type StorylineNamer struct {
	cor.BaseCommand
	summarizer     ai.Summarizer // Nil selects the template strategy.
	promptTemplate *template.Template
}

// NewStorylineNamer constructs the command. Passing a nil summarizer selects
// the deterministic template strategy.
func NewStorylineNamer(name string, summarizer ai.Summarizer) *StorylineNamer {
	return &StorylineNamer{
		BaseCommand:    *cor.NewBaseCommand(name),
		summarizer:     summarizer,
		promptTemplate: template.Must(template.New("naming").Parse(namingPrompt)),
	}
}

// Execute names every storyline in place.
func (c *StorylineNamer) Execute(context cor.Context) {
	storylines := context.Get(c.GetInputParam()).([]*model.Storyline)

	for i, storyline := range storylines {
		if c.summarizer != nil {
			if c.nameGeneratively(context, storyline) {
				continue
			}
		}
		nameFromTemplate(storyline, i)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, storylines)
}

// nameGeneratively asks the naming model for a title and reports whether it
// succeeded.
func (c *StorylineNamer) nameGeneratively(context cor.Context, storyline *model.Storyline) bool {
	exampleJSON, _ := json.Marshal(model.GetExampleStorylineTitle())

	var prompt bytes.Buffer
	err := c.promptTemplate.Execute(&prompt, map[string]string{
		"EXAMPLE_SCENES": sceneEvidence(model.GetExampleStorylineScenes()),
		"EXAMPLE_JSON":   string(exampleJSON),
		"SCENES":         sceneEvidence(storyline.Scenes),
	})
	if err != nil {
		return false
	}

	raw, err := c.summarizer.Summarize(context.GetContext(), prompt.String())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		return false
	}
	var title model.StorylineTitle
	if err := json.Unmarshal([]byte(raw), &title); err != nil || strings.TrimSpace(title.Name) == "" {
		return false
	}
	storyline.Name = strings.TrimSpace(title.Name)
	storyline.Description = strings.TrimSpace(title.Description)
	return true
}

// sceneEvidence renders scenes as the timestamped lines the naming prompt
// presents to the model.
func sceneEvidence(scenes []*model.Scene) string {
	var b strings.Builder
	for _, scene := range scenes {
		fmt.Fprintf(&b, "[%.1fs-%.1fs] %s\n", scene.StartTime, scene.EndTime, SceneText(scene))
	}
	return b.String()
}

// nameFromTemplate applies the deterministic strategy: a numbered name and a
// description taken from the first scene with any text.
func nameFromTemplate(storyline *model.Storyline, index int) {
	storyline.Name = fmt.Sprintf("Storyline %d", index+1)
	for _, scene := range storyline.Scenes {
		if text := SceneText(scene); text != "" {
			storyline.Description = text
			return
		}
	}
	storyline.Description = fmt.Sprintf("Scenes from %.1fs to %.1fs", storyline.StartTime, storyline.EndTime)
}
