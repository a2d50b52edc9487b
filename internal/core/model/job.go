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

// JobState enumerates the lifecycle phases of an analysis job.
type JobState string

const (
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobError      JobState = "error"
)

// JobStatus is a snapshot of one job's lifecycle. Exactly one of Result and
// the progress fields is meaningful, selected by State:
//
//   - JobProcessing: Progress and Message describe the current phase.
//   - JobCompleted: Result holds the final output; Progress is pinned at 1.0.
//   - JobError: Message holds the failure description.
type JobStatus struct {
	State    JobState        `json:"status"`
	Progress float64         `json:"progress"` // Monotonically non-decreasing in [0, 1].
	Message  string          `json:"message,omitempty"`
	Result   *AnalysisResult `json:"result,omitempty"`
}

// Processing builds a JobStatus for a job still in flight.
func Processing(progress float64, message string) JobStatus {
	return JobStatus{State: JobProcessing, Progress: progress, Message: message}
}

// Completed builds a terminal JobStatus wrapping the finished result.
func Completed(result *AnalysisResult) JobStatus {
	return JobStatus{State: JobCompleted, Progress: 1.0, Result: result}
}

// Errored builds a terminal JobStatus describing a failed job.
func Errored(message string) JobStatus {
	return JobStatus{State: JobError, Message: message}
}

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s.State == JobCompleted || s.State == JobError
}

// AnalyzeResponse is the wire shape returned when a job is accepted.
type AnalyzeResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is the wire shape returned by the polling endpoint. It is a
// JobStatus plus the echoed task id.
type StatusResponse struct {
	TaskID string `json:"task_id"`
	JobStatus
}
