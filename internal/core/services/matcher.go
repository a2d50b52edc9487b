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

// This file implements fuzzy matching of extracted name mentions against a
// character roster, plus the reconciliation overlay that lets a human
// correct the automatic decisions afterwards.
//
// Logic Flow (scoring one mention against one name):
//  1. Normalize both strings (lowercase, trimmed).
//  2. Identical strings score 1.0.
//  3. If one contains the other, score 0.8 plus up to 0.2 proportional to
//     how close the lengths are, so "Геральт" inside "Геральт из Ривии"
//     scores high but a two-letter fragment inside a long name does not.
//  4. Otherwise score the fraction of positions where the two strings carry
//     the same rune, over the longer length.
//
// A mention's score against a character is the maximum over the canonical
// name and all aliases.
package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/i-kohan/series-automation/internal/core/model"
)

// MatchScore computes the similarity of a mention and a candidate name in
// [0, 1]. The comparison is rune-based so non-ASCII names score correctly.
func MatchScore(mention, name string) float64 {
	a := []rune(strings.ToLower(strings.TrimSpace(mention)))
	b := []rune(strings.ToLower(strings.TrimSpace(name)))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if string(a) == string(b) {
		return 1.0
	}

	minLen, maxLen := len(a), len(b)
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}
	if strings.Contains(string(a), string(b)) || strings.Contains(string(b), string(a)) {
		return 0.8 + 0.2*float64(minLen)/float64(maxLen)
	}

	var overlap int
	for i := 0; i < minLen; i++ {
		if a[i] == b[i] {
			overlap++
		}
	}
	return float64(overlap) / float64(maxLen)
}

// ScoreAgainst returns the best score of a mention against a character,
// considering the canonical name and every alias.
func ScoreAgainst(mention string, character model.Character) float64 {
	best := MatchScore(mention, character.Name)
	for _, alias := range character.Aliases {
		if s := MatchScore(mention, alias); s > best {
			best = s
		}
	}
	return best
}

// Matcher binds a roster and an acceptance threshold.
type Matcher struct {
	Roster   []model.Character
	MinScore float64
}

// Match scores one mention against the whole roster. Scores at or above the
// threshold produce a matched result bound to the best-scoring character;
// anything below stays unmatched but still reports the best score, which the
// reconciliation UI surfaces as a suggestion.
func (m *Matcher) Match(mention string) model.EntityMatch {
	var bestScore float64
	var bestName string
	for _, character := range m.Roster {
		if s := ScoreAgainst(mention, character); s > bestScore {
			bestScore = s
			bestName = character.Name
		}
	}
	result := model.EntityMatch{Mention: mention, Score: bestScore, Status: model.MatchUnmatched}
	if bestScore >= m.MinScore {
		result.Candidate = bestName
		result.Status = model.MatchMatched
	}
	return result
}

// MatchService stores the per-task entity match lists produced during
// analysis and applies reconciliation decisions to them. Automatic results
// are kept alongside the overlaid ones so a reset restores the original
// decision.
type MatchService struct {
	mu       sync.RWMutex
	current  map[string][]model.EntityMatch
	original map[string][]model.EntityMatch
}

// NewMatchService returns an empty service.
func NewMatchService() *MatchService {
	return &MatchService{
		current:  make(map[string][]model.EntityMatch),
		original: make(map[string][]model.EntityMatch),
	}
}

// Put records the automatic match list for a task, replacing any previous
// state including reconciliation decisions.
func (s *MatchService) Put(taskID string, matches []model.EntityMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[taskID] = append([]model.EntityMatch(nil), matches...)
	s.original[taskID] = append([]model.EntityMatch(nil), matches...)
}

// Get returns the match list for a task and whether the task is known.
func (s *MatchService) Get(taskID string) ([]model.EntityMatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches, ok := s.current[taskID]
	if !ok {
		return nil, false
	}
	return append([]model.EntityMatch(nil), matches...), true
}

// Reconciliation actions accepted by Decide.
const (
	DecisionManual = "manual"
	DecisionSkip   = "skip"
	DecisionReset  = "reset"
)

// Decide applies one human decision to a mention of a task:
//
//   - manual: bind the mention to the given roster character (status manual).
//   - skip: mark the mention as noise (status skipped).
//   - reset: restore the automatic decision.
//
// It returns the updated match, or an error when the task or mention is
// unknown, the action is unrecognized, or manual lacks a candidate.
func (s *MatchService) Decide(taskID, mention, action, candidate string) (model.EntityMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, ok := s.current[taskID]
	if !ok {
		return model.EntityMatch{}, fmt.Errorf("no matches for task %s", taskID)
	}
	idx := -1
	for i := range matches {
		if matches[i].Mention == mention {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.EntityMatch{}, fmt.Errorf("unknown mention %q for task %s", mention, taskID)
	}

	switch action {
	case DecisionManual:
		if candidate == "" {
			return model.EntityMatch{}, fmt.Errorf("manual requires a candidate")
		}
		matches[idx].Candidate = candidate
		matches[idx].Score = 1.0
		matches[idx].Status = model.MatchManual
	case DecisionSkip:
		matches[idx].Candidate = ""
		matches[idx].Status = model.MatchSkipped
	case DecisionReset:
		matches[idx] = s.original[taskID][idx]
	default:
		return model.EntityMatch{}, fmt.Errorf("unknown action %q", action)
	}
	return matches[idx], nil
}
