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

package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/i-kohan/series-automation/internal/core/model"
)

// RosterProvider reads character rosters from per-series JSON files. The
// roster directory is owned by content management; this service only reads
// it, on every request, so roster edits take effect without a restart.
type RosterProvider struct {
	dir string
}

// NewRosterProvider returns a provider rooted at dir.
func NewRosterProvider(dir string) *RosterProvider {
	return &RosterProvider{dir: dir}
}

// Load reads the roster for one series. A missing roster file is not an
// error; analysis simply runs without entity matching, so an empty slice is
// returned.
func (p *RosterProvider) Load(series string) ([]model.Character, error) {
	path := filepath.Join(p.dir, filepath.Base(series)+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var roster []model.Character
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return roster, nil
}
