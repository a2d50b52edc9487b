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

// Package test provides utility functions and deterministic fakes to support
// the application's test suite. The fakes implement the inference interfaces
// from the ai package so that pipeline and service tests can run without a
// network connection or a hosted model backend.
package test

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"os"
	"testing"

	"github.com/i-kohan/series-automation/internal/ai"
	"github.com/i-kohan/series-automation/internal/config"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are parsed only once per
// test binary.
type StateManager struct {
	config *config.Config
}

var state = &StateManager{}

// HandleErr fails the current test when err is non-nil. A convenience helper
// to reduce boilerplate error-checking code in tests.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS points the configuration loader at the test configuration files.
// The runtime identifier is forced to "test" so the loader picks up the
// ".env.test.toml" overrides.
func SetupOS() (err error) {
	err = os.Setenv(config.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(config.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The
// configuration is loaded from the TOML files on first call and cached for
// subsequent calls.
func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		cfg := config.NewConfig()
		config.LoadConfig(cfg)
		state.config = cfg
	}
	return state.config
}

// FakeCaptioner returns a caption derived from the input's byte length, so
// tests get distinct but repeatable captions per frame.
type FakeCaptioner struct {
	Calls int
}

func (f *FakeCaptioner) Caption(_ context.Context, jpeg []byte) (string, error) {
	f.Calls++
	return fmt.Sprintf("a frame of %d bytes", len(jpeg)), nil
}

// FakeTranscriber replays a fixed sequence of transcripts, one per call,
// returning empty transcripts once the sequence is exhausted.
type FakeTranscriber struct {
	Transcripts []string
	Calls       int
}

func (f *FakeTranscriber) Transcribe(_ context.Context, _ []byte) (*ai.Transcription, error) {
	idx := f.Calls
	f.Calls++
	if idx >= len(f.Transcripts) {
		return &ai.Transcription{}, nil
	}
	return &ai.Transcription{Text: f.Transcripts[idx], Language: "en"}, nil
}

// FakeTextEmbedder produces a deterministic unit vector per input text by
// hashing the text into the vector components. Identical texts embed to
// identical vectors, so clustering tests can rely on similarity structure.
type FakeTextEmbedder struct {
	Dim int
}

func (f *FakeTextEmbedder) EmbedText(_ context.Context, texts []string) ([][]float64, error) {
	dim := f.Dim
	if dim <= 0 {
		dim = 8
	}
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		out = append(out, hashVector(text, dim))
	}
	return out, nil
}

// FakeImageEmbedder embeds an image as a deterministic unit vector derived
// from its bytes.
type FakeImageEmbedder struct {
	Dim int
}

func (f *FakeImageEmbedder) EmbedImage(_ context.Context, jpeg []byte) ([]float64, error) {
	dim := f.Dim
	if dim <= 0 {
		dim = 8
	}
	return hashVector(string(jpeg), dim), nil
}

// FakeSummarizer returns a canned response regardless of the prompt, and
// records the prompts it received for assertions.
type FakeSummarizer struct {
	Response string
	Prompts  []string
}

func (f *FakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.Prompts = append(f.Prompts, prompt)
	return f.Response, nil
}

// hashVector spreads an FNV hash of the input across dim components and
// normalizes the result to unit length.
func hashVector(in string, dim int) []float64 {
	vec := make([]float64, dim)
	var norm float64
	for i := 0; i < dim; i++ {
		h := fnv.New64a()
		_, _ = h.Write([]byte(in))
		_, _ = h.Write([]byte{byte(i)})
		v := float64(h.Sum64()%1000)/500.0 - 1.0
		vec[i] = v
		norm += v * v
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := math.Sqrt(norm)
	for i := range vec {
		vec[i] /= scale
	}
	return vec
}
