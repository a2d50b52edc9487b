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

// Package ai provides the inference boundary of the analysis pipeline. The
// interfaces in this file are what the extractor commands depend on; the
// rest of the package implements them on Google's Generative AI services,
// and the testutil package implements them as deterministic fakes.
package ai

import "context"

// Transcription is the result of running speech recognition over one scene's
// audio.
type Transcription struct {
	Text     string
	Language string // BCP-47 language tag, best effort.
}

// Captioner produces a natural-language description of a single video frame.
type Captioner interface {
	Caption(ctx context.Context, jpeg []byte) (string, error)
}

// Transcriber converts a scene's audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (*Transcription, error)
}

// TextEmbedder maps text strings into a shared vector space. The returned
// slice is index-aligned with the input.
type TextEmbedder interface {
	EmbedText(ctx context.Context, texts []string) ([][]float64, error)
}

// ImageEmbedder maps a single frame into the visual vector space.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, jpeg []byte) ([]float64, error)
}

// Summarizer produces a short name and description for a group of scenes,
// given a prompt assembled by the storyline namer. Implementations return
// the raw model output; the namer parses it.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
