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

package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/config"
	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/core/services"
)

func TestExtractMentionsRuns(t *testing.T) {
	got := ExtractMentions("a man walks with Геральт из Ривии toward the castle")
	// "из" breaks the run, so the two capitalized fragments surface
	// separately.
	assert.Equal(t, []string{"Геральт", "Ривии"}, got)

	got = ExtractMentions("Geralt of Rivia meets Yennefer near Kaer Morhen")
	assert.Equal(t, []string{"Geralt", "Rivia", "Yennefer", "Kaer Morhen"}, got)
}

func TestExtractMentionsDedupes(t *testing.T) {
	got := ExtractMentions("Цири бежит. Цири прячется. Геральт ищет Цири")
	assert.Equal(t, []string{"Цири", "Геральт"}, got)
}

func TestExtractMentionsPunctuationAndApostrophes(t *testing.T) {
	got := ExtractMentions("suddenly, O'Brien shouts: stop! Anna-Maria turns")
	assert.Equal(t, []string{"O'Brien", "Anna-Maria"}, got)
}

func TestExtractMentionsEmpty(t *testing.T) {
	assert.Empty(t, ExtractMentions(""))
	assert.Empty(t, ExtractMentions("no names in this sentence at all"))
}

func TestMatchKeywords(t *testing.T) {
	roster := []model.Character{
		{Name: "Геральт", Keywords: []string{"меч", "ведьмак"}},
		{Name: "Йеннифэр", Keywords: []string{"магия"}},
	}

	got := matchKeywords("Ведьмак достает меч", roster)
	assert.Equal(t, []string{"ведьмак", "меч"}, got)

	assert.Nil(t, matchKeywords("ничего общего", roster))
}

// matchFixture persists a roster for the "witcher" series and returns the
// services an EntityMatch command needs.
func matchFixture(t *testing.T) (*services.RosterProvider, *services.MatchService) {
	t.Helper()
	roster := []model.Character{
		{Name: "Геральт", Aliases: []string{"Белый Волк"}, Keywords: []string{"меч"}},
		{Name: "Цири"},
	}
	dir := t.TempDir()
	data, err := json.Marshal(roster)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "witcher.json"), data, 0o644))
	return services.NewRosterProvider(dir), services.NewMatchService()
}

func runEntityMatch(t *testing.T, cfg config.Matching) ([]*model.Storyline, *services.MatchService) {
	t.Helper()
	roster, matches := matchFixture(t)
	storylines := []*model.Storyline{{
		ID:     "storyline_1",
		Scenes: []*model.Scene{{ID: "scene_1", Caption: "Геральт обнажает меч"}},
	}}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(GetRequestParamName(), &model.AnalysisRequest{TaskID: "task-match", Series: "witcher"})
	chainCtx.Add(cor.CtxIn, storylines)

	cmd := NewEntityMatch("match-entities", roster, matches, &cfg)
	cmd.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors(), "chain errors: %v", chainCtx.GetErrors())
	return storylines, matches
}

func TestEntityMatchAnnotatesStorylines(t *testing.T) {
	storylines, matches := runEntityMatch(t, config.Matching{
		MinScore:               0.8,
		EnableCharacterMatches: true,
		EnableKeywordMatches:   true,
	})

	assert.Equal(t, []string{"Геральт"}, storylines[0].Characters)
	assert.Equal(t, []string{"меч"}, storylines[0].Keywords)

	recorded, ok := matches.Get("task-match")
	require.True(t, ok)
	assert.NotEmpty(t, recorded)
}

func TestEntityMatchCharacterToggleOff(t *testing.T) {
	// Disabling character matching skips the command entirely, keywords
	// included, and records nothing for reconciliation.
	storylines, matches := runEntityMatch(t, config.Matching{
		MinScore:               0.8,
		EnableCharacterMatches: false,
		EnableKeywordMatches:   true,
	})

	assert.Nil(t, storylines[0].Characters)
	assert.Nil(t, storylines[0].Keywords)

	_, ok := matches.Get("task-match")
	assert.False(t, ok)
}

func TestEntityMatchKeywordToggleOff(t *testing.T) {
	storylines, matches := runEntityMatch(t, config.Matching{
		MinScore:               0.8,
		EnableCharacterMatches: true,
		EnableKeywordMatches:   false,
	})

	assert.Equal(t, []string{"Геральт"}, storylines[0].Characters)
	assert.Nil(t, storylines[0].Keywords)

	_, ok := matches.Get("task-match")
	assert.True(t, ok)
}

func TestEntityMatchWithoutSeriesIsANoOp(t *testing.T) {
	roster, matches := matchFixture(t)
	storylines := []*model.Storyline{{
		ID:     "storyline_1",
		Scenes: []*model.Scene{{ID: "scene_1", Caption: "Геральт обнажает меч"}},
	}}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.Add(GetRequestParamName(), &model.AnalysisRequest{TaskID: "task-match"})
	chainCtx.Add(cor.CtxIn, storylines)

	cfg := config.Matching{MinScore: 0.8, EnableCharacterMatches: true, EnableKeywordMatches: true}
	cmd := NewEntityMatch("match-entities", roster, matches, &cfg)
	cmd.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors())

	assert.Nil(t, storylines[0].Characters)
	_, ok := matches.Get("task-match")
	assert.False(t, ok)
}
