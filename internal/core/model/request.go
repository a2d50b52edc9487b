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

package model

import "time"

// AnalysisRequest is the unit of work handed to the analysis workflow. It is
// built by the HTTP handler once the request is validated and the job is
// registered.
type AnalysisRequest struct {
	TaskID        string
	VideoPath     string // Absolute path of the source video on disk.
	VideoFilename string // Original filename, echoed into the result.
	NumStorylines int    // Target storyline count k; clamped to the scene count later.
	Series        string // Roster key for entity matching; empty disables matching.
	StartedAt     time.Time
}
