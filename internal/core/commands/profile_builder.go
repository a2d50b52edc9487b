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

// This file defines the profile builder, which fuses each scene's caption
// and transcript into the single text embedding the storyline assigner
// clusters on. Scenes with no text at all fall back to their visual
// embedding so they still participate in coherence scoring.
package commands

import (
	"fmt"
	"strings"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
)

// ProfileBuilder embeds the fused scene text in one batch call.
type ProfileBuilder struct {
	cor.BaseCommand
	embedder ai.TextEmbedder
}

// NewProfileBuilder constructs the command.
func NewProfileBuilder(name string, embedder ai.TextEmbedder) *ProfileBuilder {
	return &ProfileBuilder{BaseCommand: *cor.NewBaseCommand(name), embedder: embedder}
}

// Execute assigns every scene its clustering profile.
func (c *ProfileBuilder) Execute(context cor.Context) {
	scenes := context.Get(c.GetInputParam()).([]*model.Scene)

	var texts []string
	var indices []int
	for i, scene := range scenes {
		text := SceneText(scene)
		if text == "" {
			// No caption and no transcript; cluster on visuals.
			scene.Profile = scene.Embedding
			continue
		}
		texts = append(texts, text)
		indices = append(indices, i)
	}

	if len(texts) > 0 {
		vectors, err := c.embedder.EmbedText(context.GetContext(), texts)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("embed scene profiles: %w", err))
			return
		}
		for pos, i := range indices {
			scenes[i].Profile = L2Normalize(vectors[pos])
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, scenes)
}

// SceneText fuses a scene's caption and transcript into the text that gets
// embedded as its profile.
func SceneText(scene *model.Scene) string {
	parts := make([]string, 0, 2)
	if caption := strings.TrimSpace(scene.Caption); caption != "" {
		parts = append(parts, caption)
	}
	if scene.AudioAnalysis != nil {
		if transcript := strings.TrimSpace(scene.AudioAnalysis.Transcript); transcript != "" {
			parts = append(parts, transcript)
		}
	}
	return strings.Join(parts, " ")
}
