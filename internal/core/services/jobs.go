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

// Package services holds the long-lived collaborators behind the HTTP
// surface: the job registry, the result store, the roster provider, and the
// entity matcher. This file implements the job registry, the single source
// of truth for the lifecycle of every analysis job.
package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/i-kohan/series-automation/internal/core/model"
)

// JobRegistry tracks the status of every analysis job by task id. It is safe
// for concurrent use: the HTTP handlers poll it while workflow goroutines
// update it. Terminal states are immutable; once a job completes or errors,
// later updates are discarded.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]model.JobStatus
}

// NewJobRegistry returns an empty registry.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{jobs: make(map[string]model.JobStatus)}
}

// Create registers a new job in the processing state and returns its task id.
func (r *JobRegistry) Create() string {
	taskID := uuid.NewString()
	r.mu.Lock()
	r.jobs[taskID] = model.Processing(0, "queued")
	r.mu.Unlock()
	return taskID
}

// Restore registers a job under a known task id with the given status. Used
// when rehydrating completed results from disk at startup.
func (r *JobRegistry) Restore(taskID string, status model.JobStatus) {
	r.mu.Lock()
	r.jobs[taskID] = status
	r.mu.Unlock()
}

// Get returns the current status snapshot for a task, and whether the task
// is known. Reading a status never mutates it, so polling is idempotent.
func (r *JobRegistry) Get(taskID string) (model.JobStatus, bool) {
	r.mu.RLock()
	status, ok := r.jobs[taskID]
	r.mu.RUnlock()
	return status, ok
}

// Complete moves a job to the completed state with its final result. A job
// already in a terminal state is left untouched.
func (r *JobRegistry) Complete(taskID string, result *model.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.jobs[taskID]; ok && current.Terminal() {
		return
	}
	r.jobs[taskID] = model.Completed(result)
}

// Fail moves a job to the error state with a failure description. A job
// already in a terminal state is left untouched.
func (r *JobRegistry) Fail(taskID string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.jobs[taskID]; ok && current.Terminal() {
		return
	}
	r.jobs[taskID] = model.Errored(message)
}

// Updater returns a progress reporter bound to one task, suitable for
// attaching to a workflow context. Progress through the reporter is
// monotonic: an update with a lower fraction than the current one only
// refreshes the message.
func (r *JobRegistry) Updater(taskID string) *JobUpdater {
	return &JobUpdater{registry: r, taskID: taskID}
}

// JobUpdater funnels one workflow's progress updates into the registry.
type JobUpdater struct {
	registry *JobRegistry
	taskID   string
}

// ReportProgress implements cor.ProgressReporter.
func (u *JobUpdater) ReportProgress(progress float64, message string) {
	r := u.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.jobs[u.taskID]
	if !ok || current.Terminal() {
		return
	}
	if progress < current.Progress {
		progress = current.Progress
	}
	r.jobs[u.taskID] = model.Processing(progress, message)
}
