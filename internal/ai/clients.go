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

// This file initializes and holds the inference clients the pipeline needs.
// It acts as a dependency injection container: `NewServiceClients` is called
// once at startup, reads the model configuration, and bundles everything into
// a single `ServiceClients` struct that is passed to the workflow builders.
//
// Logic Flow:
//  1. Create one genai client against the configured Vertex AI project.
//  2. Build a QuotaAwareGenerativeAIModel per configured naming model.
//  3. Bind the caption, transcription, and embedding roles to the model
//     handle, producing the Captioner/Transcriber/TextEmbedder/ImageEmbedder
//     implementations the extractor commands consume.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/i-kohan/series-automation/internal/config"
)

// DefaultSafetySettings disables content blocking for all harm categories.
// The pipeline analyzes trusted, licensed footage; a blocked caption would
// surface as a degraded scene rather than a safety event.
var DefaultSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
}

// Model role keys in the configuration's models map.
const (
	RoleCaption       = "caption"
	RoleTranscription = "transcription"
	RoleEmbedding     = "embedding"
)

// ServiceClients is the central container for all inference clients. It
// implements Captioner, Transcriber, TextEmbedder, and ImageEmbedder so the
// workflow builders can hand one object to every extractor command.
type ServiceClients struct {
	GenAIClient  *genai.Client
	NamingModels map[string]*QuotaAwareGenerativeAIModel // Keyed by logical name from the config.

	captionModel    string
	transcribeModel string
	embedModel      string

	captionLimiter    *rate.Limiter
	transcribeLimiter *rate.Limiter
	embedLimiter      *rate.Limiter
}

// NewServiceClients initializes the genai client and binds the configured
// model roles.
//
// Inputs:
//   - ctx: The root context for the application.
//   - cfg: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: Non-nil when the client cannot be created or a required model
//     role is missing from the configuration.
func NewServiceClients(ctx context.Context, cfg *config.Config) (*ServiceClients, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.Application.GoogleProject,
		Location: cfg.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	sc := &ServiceClients{
		GenAIClient:  gc,
		NamingModels: make(map[string]*QuotaAwareGenerativeAIModel),
	}

	for role, dst := range map[string]*string{
		RoleCaption:       &sc.captionModel,
		RoleTranscription: &sc.transcribeModel,
		RoleEmbedding:     &sc.embedModel,
	} {
		m, ok := cfg.Models[role]
		if !ok {
			return nil, fmt.Errorf("no model configured for role %q", role)
		}
		*dst = m.Model
	}
	sc.captionLimiter = roleLimiter(cfg.Models[RoleCaption].RateLimit)
	sc.transcribeLimiter = roleLimiter(cfg.Models[RoleTranscription].RateLimit)
	sc.embedLimiter = roleLimiter(cfg.Models[RoleEmbedding].RateLimit)

	for name, values := range cfg.NamingModels {
		genConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		sc.NamingModels[name] = NewQuotaAwareModel(genConfig, values.Model, gc.Models, values.RateLimit)
	}

	return sc, nil
}

func roleLimiter(requestsPerSecond int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return rate.NewLimiter(rate.Every(time.Second), requestsPerSecond)
}

// Caption describes a single JPEG frame in one plain sentence.
func (s *ServiceClients) Caption(ctx context.Context, jpeg []byte) (string, error) {
	if err := s.captionLimiter.Wait(ctx); err != nil {
		return "", err
	}
	contents := []*genai.Content{{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: jpeg}},
		{Text: "Describe this video frame in one concise sentence. Mention the people present by name if identifiable, the setting, and the action."},
	}}}
	resp, err := s.GenAIClient.Models.GenerateContent(ctx, s.captionModel, contents, &genai.GenerateContentConfig{
		SafetySettings: DefaultSafetySettings,
	})
	if err != nil {
		return "", fmt.Errorf("caption frame: %w", err)
	}
	return firstText(resp)
}

// Transcribe runs speech recognition over a WAV-encoded audio clip.
func (s *ServiceClients) Transcribe(ctx context.Context, wav []byte) (*Transcription, error) {
	if err := s.transcribeLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	contents := []*genai.Content{{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "audio/wav", Data: wav}},
		{Text: "Transcribe the speech in this audio verbatim. Reply with two lines: the first is the BCP-47 language tag, the second is the transcript. If there is no speech, reply with a single empty line."},
	}}}
	resp, err := s.GenAIClient.Models.GenerateContent(ctx, s.transcribeModel, contents, &genai.GenerateContentConfig{
		SafetySettings: DefaultSafetySettings,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}
	text, err := firstText(resp)
	if err != nil {
		return nil, err
	}
	return parseTranscription(text), nil
}

// EmbedText embeds a batch of texts, returning vectors index-aligned with
// the input.
func (s *ServiceClients) EmbedText(ctx context.Context, texts []string) ([][]float64, error) {
	if err := s.embedLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: t}}})
	}
	resp, err := s.GenAIClient.Models.EmbedContent(ctx, s.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed text batch: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Embeddings), len(texts))
	}
	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = toFloat64(e.Values)
	}
	return out, nil
}

// EmbedImage embeds a single JPEG frame into the visual vector space.
func (s *ServiceClients) EmbedImage(ctx context.Context, jpeg []byte) ([]float64, error) {
	if err := s.embedLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	contents := []*genai.Content{{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: jpeg}},
	}}}
	resp, err := s.GenAIClient.Models.EmbedContent(ctx, s.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed frame: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("embed frame: empty response")
	}
	return toFloat64(resp.Embeddings[0].Values), nil
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty model response")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", errors.New("no text part in model response")
}
