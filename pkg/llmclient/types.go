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

// Package llmclient is the opaque HTTP client the agent loop uses to talk
// to the LLM endpoint. The endpoint is treated as a black box: the core
// only requires that the reply is a string, and, for native tool-calling,
// that the string JSON-decodes to {tool, args} on success.
package llmclient

// Message is one role-tagged chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition is the structured tool schema carried by a Prompt for
// the native tool-calling language variant.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the wire shape POSTed to the LLM endpoint.
type Request struct {
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Model       string           `json:"model,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

// Response is the wire shape returned by the LLM endpoint. Reply is
// always a plain string — for native tool-calling it is expected to
// further JSON-decode to {tool, args}.
type Response struct {
	Reply string `json:"reply"`
}
