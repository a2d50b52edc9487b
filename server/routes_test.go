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

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/core/services"
	"github.com/i-kohan/series-automation/internal/core/workflow"
	"github.com/i-kohan/series-automation/internal/media"
	test "github.com/i-kohan/series-automation/internal/testutil"
)

// mp4Header is the smallest byte sequence the content sniffer accepts as an
// MP4 container.
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 0, 0}

// setupRoutes wires a fresh application state around temporary directories
// and returns the engine with the full v1 surface registered.
func setupRoutes(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewConfig()
	cfg.Storage.VideoDir = t.TempDir()
	cfg.Storage.ResultDir = t.TempDir()
	cfg.Storage.RosterDir = t.TempDir()

	store, err := services.NewResultStore(cfg.Storage.ResultDir)
	test.HandleErr(err, t)

	state.rootCtx = context.Background()
	state.config = cfg
	state.registry = services.NewJobRegistry()
	state.store = store
	state.matches = services.NewMatchService()
	state.analysis = workflow.NewAnalysisWorkflow(
		cfg,
		media.NewToolbox(),
		&workflow.InferenceClients{
			Captioner:     &test.FakeCaptioner{},
			Transcriber:   &test.FakeTranscriber{},
			TextEmbedder:  &test.FakeTextEmbedder{},
			ImageEmbedder: &test.FakeImageEmbedder{},
		},
		state.registry,
		store,
		services.NewRosterProvider(cfg.Storage.RosterDir),
		state.matches,
	)

	r := gin.New()
	apiV1 := r.Group("/api/v1")
	AnalysisRouter(apiV1)
	VideoRouter(apiV1)
	return r
}

func writeVideoStub(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), mp4Header, 0o644))
}

func TestAnalyzeAcceptsJob(t *testing.T) {
	r := setupRoutes(t)
	writeVideoStub(t, state.config.Storage.VideoDir, "episode01.mp4")

	body := strings.NewReader(`{"video_filename": "episode01.mp4", "num_storylines": 2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// The job is asynchronous, so acceptance is 202, not 200.
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp model.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TaskID)
	assert.Equal(t, string(model.JobProcessing), resp.Status)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	r := setupRoutes(t)
	writeVideoStub(t, state.config.Storage.VideoDir, "episode01.mp4")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{"video_filename": "episode01.mp4", "num_storylines": 0}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{"video_filename": "missing.mp4", "num_storylines": 2}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoPlaybackAddressedByTaskID(t *testing.T) {
	r := setupRoutes(t)
	writeVideoStub(t, state.config.Storage.VideoDir, "episode01.mp4")

	// The path segment is the task id; the file is named by the query.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/task-123?filename=episode01.mp4", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mp4Header, w.Body.Bytes())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/videos/task-123", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/videos/task-123?filename=missing.mp4", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoListing(t *testing.T) {
	r := setupRoutes(t)
	writeVideoStub(t, state.config.Storage.VideoDir, "episode01.mp4")
	require.NoError(t, os.WriteFile(filepath.Join(state.config.Storage.VideoDir, "notes.txt"), []byte("not a video"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Videos []string `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"episode01.mp4"}, resp.Videos)
}
