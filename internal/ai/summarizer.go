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

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// ModelSummarizer implements Summarizer on a quota-aware generative model,
// recording token usage per call.
type ModelSummarizer struct {
	model              *QuotaAwareGenerativeAIModel
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
}

// NewModelSummarizer wraps a naming model as a Summarizer.
func NewModelSummarizer(name string, model *QuotaAwareGenerativeAIModel) *ModelSummarizer {
	meter := otel.Meter("github.com/i-kohan/series-automation")
	in, _ := meter.Int64Counter(name + ".token.input")
	out, _ := meter.Int64Counter(name + ".token.output")
	return &ModelSummarizer{model: model, inputTokenCounter: in, outputTokenCounter: out}
}

// Summarize sends the prompt and returns the flattened text response.
func (s *ModelSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	content := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}, Role: "user"}}
	return GenerateTextResponse(ctx, s.inputTokenCounter, s.outputTokenCounter, s.model, content)
}
