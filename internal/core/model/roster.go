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

// Character is one known-entity entry in the roster a series is analyzed
// against. Aliases are alternative spellings or nicknames that should match
// with the same confidence as the canonical name.
type Character struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// MatchStatus enumerates the reconciliation states of one mention.
type MatchStatus string

const (
	// MatchMatched means the automatic scorer bound the mention to a roster
	// character with sufficient confidence.
	MatchMatched MatchStatus = "matched"
	// MatchUnmatched means no roster character scored above the threshold.
	MatchUnmatched MatchStatus = "unmatched"
	// MatchManual means a human bound the mention to a character, overriding
	// or supplementing the automatic decision.
	MatchManual MatchStatus = "manual"
	// MatchSkipped means a human marked the mention as noise.
	MatchSkipped MatchStatus = "skipped"
)

// EntityMatch is the outcome of scoring one extracted mention against the
// roster, possibly overlaid with a later human decision.
type EntityMatch struct {
	Mention   string      `json:"mention"`
	Candidate string      `json:"candidate,omitempty"` // Canonical roster name; empty when unmatched or skipped.
	Score     float64     `json:"score"`
	Status    MatchStatus `json:"status"`
}
