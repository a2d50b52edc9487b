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

// This file defines the final assembly step, which folds the storylines and
// the probed video metadata into the immutable AnalysisResult.
package commands

import (
	"time"

	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/media"
)

// ResultAssembly builds the AnalysisResult from everything the chain
// produced.
type ResultAssembly struct {
	cor.BaseCommand
}

// NewResultAssembly constructs the command.
func NewResultAssembly(name string) *ResultAssembly {
	return &ResultAssembly{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute emits the final result.
func (c *ResultAssembly) Execute(context cor.Context) {
	storylines := context.Get(c.GetInputParam()).([]*model.Storyline)
	request := context.Get(GetRequestParamName()).(*model.AnalysisRequest)
	info := context.Get(GetVideoInfoParamName()).(*media.VideoInfo)
	scenes := context.Get(GetScenesParamName()).([]*model.Scene)

	now := time.Now()
	result := &model.AnalysisResult{
		VideoFilename: request.VideoFilename,
		Duration:      info.Duration,
		TotalScenes:   len(scenes),
		Storylines:    storylines,
		Timestamp:     now.Format(time.RFC3339),
		Metadata: model.ResultMetadata{
			FPS:                 info.FPS,
			Size:                [2]int{info.Width, info.Height},
			AnalysisTimeSeconds: now.Sub(request.StartedAt).Seconds(),
		},
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, result)
}
