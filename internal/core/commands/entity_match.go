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

// This file defines the entity matching command.
//
// Logic Flow:
//  1. Load the roster for the requested series. No roster, or a request
//     without a series, leaves the storylines untouched.
//  2. Extract candidate name mentions from every storyline's captions and
//     transcripts: maximal runs of capitalized tokens.
//  3. Score each mention against the roster. Confident matches fill the
//     storyline's Characters list with canonical names; roster keywords
//     found in the storyline text fill its Keywords list.
//  4. The full match list, including unmatched mentions, is parked in the
//     MatchService so the reconciliation endpoints can serve and amend it.
package commands

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/core/services"
)

// EntityMatch binds scene text mentions to the character roster.
type EntityMatch struct {
	cor.BaseCommand
	roster  *services.RosterProvider
	matches *services.MatchService
	config  *config.Matching
}

// NewEntityMatch constructs the command.
func NewEntityMatch(name string, roster *services.RosterProvider, matches *services.MatchService, cfg *config.Matching) *EntityMatch {
	return &EntityMatch{
		BaseCommand: *cor.NewBaseCommand(name),
		roster:      roster,
		matches:     matches,
		config:      cfg,
	}
}

// Execute annotates the storylines and records the match list for the task.
func (c *EntityMatch) Execute(context cor.Context) {
	storylines := context.Get(c.GetInputParam()).([]*model.Storyline)
	request := context.Get(GetRequestParamName()).(*model.AnalysisRequest)

	defer func() {
		// The pipe continues with the storylines either way.
		context.Add(cor.CtxOut, storylines)
	}()

	if !c.config.EnableCharacterMatches || request.Series == "" {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		return
	}
	roster, err := c.roster.Load(request.Series)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("load roster for %q: %w", request.Series, err))
		return
	}
	if len(roster) == 0 {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		return
	}

	matcher := &services.Matcher{Roster: roster, MinScore: c.config.MinScore}
	seen := make(map[string]bool)
	var allMatches []model.EntityMatch

	for _, storyline := range storylines {
		text := storylineText(storyline)
		characters := make(map[string]bool)
		for _, mention := range ExtractMentions(text) {
			m := matcher.Match(mention)
			if !seen[mention] {
				seen[mention] = true
				allMatches = append(allMatches, m)
			}
			if m.Status == model.MatchMatched {
				characters[m.Candidate] = true
			}
		}
		storyline.Characters = sortedKeys(characters)

		if c.config.EnableKeywordMatches {
			storyline.Keywords = matchKeywords(text, roster)
		}
	}

	c.matches.Put(request.TaskID, allMatches)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}

// ExtractMentions returns the distinct candidate name mentions in text:
// maximal runs of tokens that start with an uppercase letter.
func ExtractMentions(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '-'
	})

	var mentions []string
	var run []string
	flush := func() {
		if len(run) > 0 {
			mentions = append(mentions, strings.Join(run, " "))
			run = nil
		}
	}
	for _, token := range tokens {
		first := []rune(token)[0]
		if unicode.IsUpper(first) {
			run = append(run, token)
		} else {
			flush()
		}
	}
	flush()

	seen := make(map[string]bool)
	distinct := mentions[:0]
	for _, m := range mentions {
		if !seen[m] {
			seen[m] = true
			distinct = append(distinct, m)
		}
	}
	return distinct
}

// matchKeywords returns the roster keywords that literally occur in the
// storyline text, sorted and deduplicated.
func matchKeywords(text string, roster []model.Character) []string {
	lower := strings.ToLower(text)
	found := make(map[string]bool)
	for _, character := range roster {
		for _, keyword := range character.Keywords {
			if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
				found[keyword] = true
			}
		}
	}
	return sortedKeys(found)
}

func storylineText(storyline *model.Storyline) string {
	var b strings.Builder
	for _, scene := range storyline.Scenes {
		b.WriteString(SceneText(scene))
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
