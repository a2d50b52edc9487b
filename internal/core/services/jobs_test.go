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

package services

import (
	"testing"

	"github.com/zeebo/assert"

	"github.com/i-kohan/series-automation/internal/core/model"
)

func TestJobLifecycle(t *testing.T) {
	registry := NewJobRegistry()
	taskID := registry.Create()

	status, ok := registry.Get(taskID)
	assert.True(t, ok)
	assert.Equal(t, model.JobProcessing, status.State)
	assert.Equal(t, 0.0, status.Progress)

	// Polling never mutates the status.
	again, _ := registry.Get(taskID)
	assert.Equal(t, status.State, again.State)
	assert.Equal(t, status.Progress, again.Progress)

	result := &model.AnalysisResult{VideoFilename: "episode01.mp4"}
	registry.Complete(taskID, result)

	status, ok = registry.Get(taskID)
	assert.True(t, ok)
	assert.Equal(t, model.JobCompleted, status.State)
	assert.Equal(t, 1.0, status.Progress)
	assert.NotNil(t, status.Result)
}

func TestJobTerminalStatesAreImmutable(t *testing.T) {
	registry := NewJobRegistry()
	taskID := registry.Create()

	registry.Fail(taskID, "decode failed")
	registry.Complete(taskID, &model.AnalysisResult{})

	status, _ := registry.Get(taskID)
	assert.Equal(t, model.JobError, status.State)
	assert.Equal(t, "decode failed", status.Message)

	// Progress updates after a terminal state are discarded too.
	registry.Updater(taskID).ReportProgress(0.5, "late update")
	status, _ = registry.Get(taskID)
	assert.Equal(t, model.JobError, status.State)
}

func TestJobProgressIsMonotonic(t *testing.T) {
	registry := NewJobRegistry()
	taskID := registry.Create()
	updater := registry.Updater(taskID)

	updater.ReportProgress(0.4, "extracting visual features")
	updater.ReportProgress(0.2, "retrying scene 3")

	status, _ := registry.Get(taskID)
	assert.Equal(t, 0.4, status.Progress)
	assert.Equal(t, "retrying scene 3", status.Message)

	updater.ReportProgress(0.8, "clustering scenes into storylines")
	status, _ = registry.Get(taskID)
	assert.Equal(t, 0.8, status.Progress)
}

func TestJobUpdaterUnknownTask(t *testing.T) {
	registry := NewJobRegistry()
	registry.Updater("missing").ReportProgress(0.5, "ignored")
	_, ok := registry.Get("missing")
	assert.False(t, ok)
}

func TestJobRestore(t *testing.T) {
	registry := NewJobRegistry()
	result := &model.AnalysisResult{VideoFilename: "episode02.mp4"}
	registry.Restore("task-from-disk", model.Completed(result))

	status, ok := registry.Get("task-from-disk")
	assert.True(t, ok)
	assert.Equal(t, model.JobCompleted, status.State)
	assert.Equal(t, "episode02.mp4", status.Result.VideoFilename)
}
