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

// This file implements a wrapper around the Generative AI model handle using
// the Decorator pattern, adding rate limiting and a retry mechanism.
//
// Why this is important:
//   - Rate Limiting: Vertex AI enforces per-minute request quotas. The
//     wrapper keeps the pipeline's worker pools from exceeding them, which
//     would otherwise surface as hard errors mid-analysis.
//   - Retry Logic: Network requests can fail for transient reasons. The
//     wrapper retries a failed request a bounded number of times before
//     giving up.
package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type retryKey struct{}

// maxRetries bounds how many times a failed generation is re-attempted.
const maxRetries = 3

// QuotaAwareGenerativeAIModel wraps a genai model handle with its generation
// config and a rate limiter. Callers use GenerateContent exactly as they
// would on the raw handle; throttling and retries happen underneath.
type QuotaAwareGenerativeAIModel struct {
	GenerateConfig *genai.GenerateContentConfig
	ModelName      string
	ModelHandle    *genai.Models
	RateLimit      *rate.Limiter
}

// NewQuotaAwareModel wraps the given model handle and config with a limiter
// allowing a burst of `requestsPerSecond` calls replenished once per second.
//
// Inputs:
//   - config: The generation config applied to every call.
//   - name: The model identifier, e.g. "gemini-2.0-flash".
//   - handle: The genai model handle to delegate to.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerateConfig: config,
		ModelName:      name,
		ModelHandle:    handle,
		RateLimit:      rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent calls the underlying model, enforcing the rate limit and
// retrying failed calls up to maxRetries times with a backoff wait.
//
// Inputs:
//   - ctx: The context for the request; also carries retry state.
//   - content: The parts of the multi-modal prompt (text, images, audio).
//
// Outputs:
//   - *genai.GenerateContentResponse: The model response on success.
//   - error: Non-nil when the request fails after all retries.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerateConfig)
	if err == nil {
		return resp, nil
	}

	retryCount, ok := ctx.Value(retryKey{}).(int)
	if !ok {
		retryCount = 0
	}
	if retryCount >= maxRetries {
		return nil, errors.New("failed generation on max retries")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(retryCount+1) * 10 * time.Second):
	}
	return q.GenerateContent(context.WithValue(ctx, retryKey{}, retryCount+1), content)
}
