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
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// GenerateTextResponse executes a request against a quota-aware model and
// flattens the response to a single string, recording token usage on the
// given OpenTelemetry counters. Markdown JSON fences are stripped so callers
// asking for JSON output can unmarshal the result directly.
//
// Inputs:
//   - ctx: The context for the request.
//   - inputTokenCounter: Counter for prompt tokens used.
//   - outputTokenCounter: Counter for response tokens generated.
//   - model: The rate-limited generative model to call.
//   - content: The multi-modal prompt.
//
// Outputs:
//   - string: The concatenated text content of the response.
//   - error: Non-nil when the request fails after the wrapper's retries.
func GenerateTextResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (string, error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var value string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			value += fmt.Sprint(part.Text)
		}
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}
