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

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTranscriptionTwoLines(t *testing.T) {
	got := parseTranscription("ru\nГеральт, мы должны идти.")
	assert.Equal(t, "ru", got.Language)
	assert.Equal(t, "Геральт, мы должны идти.", got.Text)
}

func TestParseTranscriptionMultilineTranscript(t *testing.T) {
	got := parseTranscription("en\nFirst line.\nSecond line.")
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, "First line.\nSecond line.", got.Text)
}

func TestParseTranscriptionSingleLine(t *testing.T) {
	// A bare tag means the model heard no speech.
	got := parseTranscription("en")
	assert.Equal(t, "en", got.Language)
	assert.Empty(t, got.Text)

	// A sentence without a tag line is taken as the transcript.
	got = parseTranscription("They are already here.")
	assert.Empty(t, got.Language)
	assert.Equal(t, "They are already here.", got.Text)
}

func TestParseTranscriptionEmpty(t *testing.T) {
	got := parseTranscription("   \n  ")
	assert.Empty(t, got.Language)
	assert.Empty(t, got.Text)
}

func TestLooksLikeLanguageTag(t *testing.T) {
	assert.True(t, looksLikeLanguageTag("en"))
	assert.True(t, looksLikeLanguageTag("ru-RU"))
	assert.True(t, looksLikeLanguageTag("zh-Hant"))
	assert.False(t, looksLikeLanguageTag("They are already here."))
	assert.False(t, looksLikeLanguageTag(""))
	assert.False(t, looksLikeLanguageTag("a sentence with spaces"))
}
