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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the analysis
// pipeline. This file defines the well-known context parameter names that
// commands use to share side data outside the primary CtxIn/CtxOut pipe.
package commands

// Context parameter keys for data shared across commands.
const (
	requestParamName   = "__ANALYSIS_REQUEST__"
	videoInfoParamName = "__VIDEO_INFO__"
	waveformParamName  = "__WAVEFORM__"
	scenesParamName    = "__SCENES__"
)

// GetRequestParamName returns the context key holding the *model.AnalysisRequest.
func GetRequestParamName() string { return requestParamName }

// GetVideoInfoParamName returns the context key holding the *media.VideoInfo.
func GetVideoInfoParamName() string { return videoInfoParamName }

// GetWaveformParamName returns the context key holding the decoded mono
// waveform ([]float64).
func GetWaveformParamName() string { return waveformParamName }

// GetScenesParamName returns the context key holding the detected scene list
// ([]*model.Scene) for commands that run after the pipe has moved on to
// storylines.
func GetScenesParamName() string { return scenesParamName }
