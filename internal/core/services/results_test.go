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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/core/model"
)

func TestResultStoreRoundTrip(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)

	result := &model.AnalysisResult{
		VideoFilename: "episode01.mp4",
		Duration:      1325.4,
		TotalScenes:   42,
		Storylines: []*model.Storyline{
			{ID: "storyline_1", Name: "The Hunt", Duration: 600},
		},
	}
	require.NoError(t, store.Save("task-1", result))

	loaded, err := store.Load("task-1")
	require.NoError(t, err)
	assert.Equal(t, "episode01.mp4", loaded.VideoFilename)
	assert.Equal(t, 42, loaded.TotalScenes)
	require.Len(t, loaded.Storylines, 1)
	assert.Equal(t, "The Hunt", loaded.Storylines[0].Name)
}

func TestResultStoreLoadMissing(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultStoreRehydrate(t *testing.T) {
	dir := t.TempDir()
	store, err := NewResultStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("task-a", &model.AnalysisResult{VideoFilename: "a.mp4"}))
	require.NoError(t, store.Save("task-b", &model.AnalysisResult{VideoFilename: "b.mp4"}))

	// A corrupt file must be skipped without aborting the rest.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task-c.json"), []byte("{broken"), 0o644))

	registry := NewJobRegistry()
	store.Rehydrate(registry)

	status, ok := registry.Get("task-a")
	require.True(t, ok)
	assert.Equal(t, model.JobCompleted, status.State)
	assert.Equal(t, "a.mp4", status.Result.VideoFilename)

	_, ok = registry.Get("task-b")
	assert.True(t, ok)

	_, ok = registry.Get("task-c")
	assert.False(t, ok)
}
