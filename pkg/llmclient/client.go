// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kadirpekel/agentcore/pkg/httpclient"
	"github.com/kadirpekel/agentcore/pkg/observability"
)

// Client calls an opaque LLM HTTP endpoint.
type Client struct {
	http        *httpclient.Client
	endpointURL string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	metrics     *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model identifier forwarded on every request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTemperature sets the sampling temperature forwarded on every
// request.
func WithTemperature(temperature float64) Option {
	return func(c *Client) { c.temperature = temperature }
}

// WithMaxTokens sets the max-tokens bound forwarded on every request.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) { c.maxTokens = maxTokens }
}

// WithMetrics attaches a Metrics collector for call-duration observation.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a Client against endpointURL. timeout should be at least
// 30s, per the recommendation for reasoning models; a non-positive value
// falls back to 60s.
func New(endpointURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		http:        httpclient.New(),
		endpointURL: endpointURL,
		timeout:     timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call posts req to the LLM endpoint and returns the reply string.
func (c *Client) Call(ctx context.Context, purpose string, req Request) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.Temperature == 0 {
		req.Temperature = c.temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.maxTokens
	}

	ctx, span := observability.GetTracer("agentcore/llmclient").Start(ctx, observability.SpanLLMCall)
	defer span.End()

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordLLMCall(purpose, time.Since(start))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode llm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call llm endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	return out.Reply, nil
}
