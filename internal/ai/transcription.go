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

package ai

import "strings"

// parseTranscription splits the transcription model's two-line reply into a
// language tag and transcript. A single-line reply is treated as a transcript
// with an unknown language; an empty reply means no speech.
func parseTranscription(text string) *Transcription {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Transcription{}
	}
	line, rest, found := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if !found {
		// Some models skip the tag line when asked for a transcript only.
		if looksLikeLanguageTag(line) {
			return &Transcription{Language: line}
		}
		return &Transcription{Text: line}
	}
	return &Transcription{
		Language: line,
		Text:     strings.TrimSpace(rest),
	}
}

// looksLikeLanguageTag reports whether s is plausibly a bare BCP-47 tag
// rather than transcript text.
func looksLikeLanguageTag(s string) bool {
	if len(s) == 0 || len(s) > 12 || strings.ContainsAny(s, " .,!?") {
		return false
	}
	for _, r := range s {
		if !(r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
