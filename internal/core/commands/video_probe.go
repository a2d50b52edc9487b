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

// This file defines the first command of the analysis chain: probing the
// source video's container metadata and fanning it out to the rest of the
// pipeline through the context.
package commands

import (
	"fmt"

	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/media"
)

// VideoProbe validates that the requested video is readable and records its
// duration, frame rate, and dimensions for downstream commands.
type VideoProbe struct {
	cor.BaseCommand
	toolbox *media.Toolbox
}

// NewVideoProbe constructs the command.
func NewVideoProbe(name string, toolbox *media.Toolbox) *VideoProbe {
	return &VideoProbe{BaseCommand: *cor.NewBaseCommand(name), toolbox: toolbox}
}

// Execute probes the video and stores the resulting VideoInfo under its
// well-known parameter name. The request itself is passed through the pipe
// unchanged.
func (c *VideoProbe) Execute(context cor.Context) {
	request := context.Get(c.GetInputParam()).(*model.AnalysisRequest)

	info, err := c.toolbox.Probe(context.GetContext(), request.VideoPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("probe video: %w", err))
		return
	}
	if info.Duration <= 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("video %s has no duration", request.VideoFilename))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetRequestParamName(), request)
	context.Add(GetVideoInfoParamName(), info)
	context.Add(cor.CtxOut, request)
}
