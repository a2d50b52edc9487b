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

// This file defines the REST surface of the service:
//
//   - POST /api/v1/analyze: accept a new analysis job.
//   - GET  /api/v1/analysis/:task_id: poll a job's status.
//   - GET  /api/v1/analysis/:task_id/matches: entity match reconciliation.
//   - POST /api/v1/analysis/:task_id/matches: apply a human match decision.
//   - GET  /api/v1/videos: list the analyzable videos in the shared dir.
//   - GET  /api/v1/videos/:task_id?filename=: stream one video (range
//     requests work through Gin's file serving).
package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/core/services"
)

// AnalyzeRequestBody is the JSON body of POST /analyze.
type AnalyzeRequestBody struct {
	VideoFilename string `json:"video_filename" binding:"required"`
	NumStorylines int    `json:"num_storylines"`
	Series        string `json:"series"`
}

// MatchDecisionBody is the JSON body of POST /analysis/:task_id/matches.
type MatchDecisionBody struct {
	Mention   string `json:"mention" binding:"required"`
	Action    string `json:"action" binding:"required"`
	Candidate string `json:"candidate"`
}

// AnalysisRouter registers the analysis lifecycle endpoints.
func AnalysisRouter(r *gin.RouterGroup) {
	r.POST("/analyze", func(c *gin.Context) {
		var body AnalyzeRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "video_filename is required"})
			return
		}
		if body.NumStorylines < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "num_storylines must be at least 1"})
			return
		}

		videoPath := filepath.Join(state.config.Storage.VideoDir, filepath.Base(body.VideoFilename))
		if !isVideoFile(videoPath) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found: " + body.VideoFilename})
			return
		}

		taskID := state.registry.Create()
		request := &model.AnalysisRequest{
			TaskID:        taskID,
			VideoPath:     videoPath,
			VideoFilename: filepath.Base(body.VideoFilename),
			NumStorylines: body.NumStorylines,
			Series:        body.Series,
			StartedAt:     time.Now(),
		}

		// The workflow runs on the process root context; a cancelled HTTP
		// request must not abort the analysis it accepted.
		go state.analysis.Run(state.rootCtx, request)

		slog.Info("analysis accepted",
			"task_id", taskID,
			"video", request.VideoFilename,
			"num_storylines", request.NumStorylines)
		c.JSON(http.StatusAccepted, model.AnalyzeResponse{
			TaskID:  taskID,
			Status:  string(model.JobProcessing),
			Message: "analysis started",
		})
	})

	r.GET("/analysis/:task_id", func(c *gin.Context) {
		taskID := c.Param("task_id")
		status, ok := state.registry.Get(taskID)
		if !ok {
			// Fall back to disk for task ids that predate this process.
			result, err := state.store.Load(taskID)
			if errors.Is(err, services.ErrResultNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "task not found: " + taskID})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read result"})
				return
			}
			status = model.Completed(result)
			state.registry.Restore(taskID, status)
		}
		c.JSON(http.StatusOK, model.StatusResponse{TaskID: taskID, JobStatus: status})
	})

	r.GET("/analysis/:task_id/matches", func(c *gin.Context) {
		taskID := c.Param("task_id")
		matches, ok := state.matches.Get(taskID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no matches for task: " + taskID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"task_id": taskID, "matches": matches})
	})

	r.POST("/analysis/:task_id/matches", func(c *gin.Context) {
		taskID := c.Param("task_id")
		var body MatchDecisionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mention and action are required"})
			return
		}
		match, err := state.matches.Decide(taskID, body.Mention, body.Action, body.Candidate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, match)
	})
}

// VideoRouter registers the shared-directory browsing endpoints.
func VideoRouter(r *gin.RouterGroup) {
	r.GET("/videos", func(c *gin.Context) {
		entries, err := os.ReadDir(state.config.Storage.VideoDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read video directory"})
			return
		}
		videos := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if isVideoFile(filepath.Join(state.config.Storage.VideoDir, entry.Name())) {
				videos = append(videos, entry.Name())
			}
		}
		c.JSON(http.StatusOK, gin.H{"videos": videos})
	})

	// The task id segment keeps playback URLs stable per analysis; the file
	// itself is addressed by the filename query parameter.
	r.GET("/videos/:task_id", func(c *gin.Context) {
		filename := c.Query("filename")
		if filename == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "filename query parameter is required"})
			return
		}
		path := filepath.Join(state.config.Storage.VideoDir, filepath.Base(filename))
		if !isVideoFile(path) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		// http.ServeFile underneath handles Range requests for seeking.
		c.File(path)
	})
}

// isVideoFile reports whether the path exists and sniffs as a video
// container. The check reads only the header bytes.
func isVideoFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return false
	}
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false
	}
	switch kind {
	case matchers.TypeMp4, matchers.TypeMov, matchers.TypeMkv, matchers.TypeAvi, matchers.TypeWebm, matchers.TypeMpeg:
		return true
	}
	return false
}
