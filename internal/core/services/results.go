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

// This file implements the result store: completed analyses are persisted as
// one JSON file per task id, so results outlive a process restart. At
// startup the store rehydrates the job registry from whatever files exist,
// and the polling handler falls back to disk for task ids the in-memory
// registry has never seen.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/i-kohan/series-automation/internal/core/model"
)

// ErrResultNotFound is returned by Load when no persisted result exists for
// a task id.
var ErrResultNotFound = errors.New("result not found")

// ResultStore persists completed AnalysisResults as JSON files under a
// single directory, one file per task id.
type ResultStore struct {
	dir string
}

// NewResultStore creates the backing directory if needed and returns the
// store.
func NewResultStore(dir string) (*ResultStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create result dir %s: %w", dir, err)
	}
	return &ResultStore{dir: dir}, nil
}

func (s *ResultStore) path(taskID string) string {
	return filepath.Join(s.dir, taskID+".json")
}

// Save writes the result for a task. The write goes through a temp file and
// rename so a crashed process never leaves a truncated result behind.
func (s *ResultStore) Save(taskID string, result *model.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result for %s: %w", taskID, err)
	}
	tmp, err := os.CreateTemp(s.dir, "result-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(taskID))
}

// Load reads the persisted result for a task, or ErrResultNotFound.
func (s *ResultStore) Load(taskID string) (*model.AnalysisResult, error) {
	data, err := os.ReadFile(s.path(taskID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse result for %s: %w", taskID, err)
	}
	return &result, nil
}

// Rehydrate scans the result directory and registers every persisted result
// as a completed job, so polls for pre-restart task ids keep working. Files
// are parsed in parallel since a long-lived deployment can accumulate many
// results. Unreadable files are logged and skipped.
func (s *ResultStore) Rehydrate(registry *JobRegistry) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("result rehydration skipped", "dir", s.dir, "error", err)
		return
	}
	var g errgroup.Group
	g.SetLimit(8)
	var restored atomic.Int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		taskID := strings.TrimSuffix(name, ".json")
		g.Go(func() error {
			result, err := s.Load(taskID)
			if err != nil {
				slog.Warn("skipping unreadable result file", "file", name, "error", err)
				return nil
			}
			registry.Restore(taskID, model.Completed(result))
			restored.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	if n := restored.Load(); n > 0 {
		slog.Info("rehydrated persisted results", "count", n)
	}
}
