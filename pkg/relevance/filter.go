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

// Package relevance narrows a session's Registry down to the tools an
// LLM call judges relevant to the conversation so far, so that a large
// built-in catalogue doesn't crowd out the model's context window. The
// filter is advisory only: any failure anywhere in the process — a
// malformed LLM reply, a transport error — falls back to leaving the
// registry exactly as it was. It must never reduce correctness.
package relevance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/llmclient"
	"github.com/kadirpekel/agentcore/pkg/observability"
)

const (
	markerStart = "/RELEVANT_TOOLS_START"
	markerEnd   = "/RELEVANT_TOOLS_END"

	defaultMaxTools = 10
)

// Filter scores a registry's non-terminator tools against the
// conversation and goals so far, using an LLM call, and replaces the
// registry's snapshot with the selected subset.
type Filter struct {
	llm      *llmclient.Client
	maxTools int
	metrics  *observability.Metrics
}

// Option configures a Filter.
type Option func(*Filter)

// WithMaxTools overrides the default of 10 as the maximum number of tools
// the LLM is asked to select. The limit is stated in the prompt only; the
// selection returned by the LLM is not truncated to it.
func WithMaxTools(n int) Option {
	return func(f *Filter) { f.maxTools = n }
}

// WithMetrics attaches a Metrics collector for call-count observation.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Filter) { f.metrics = m }
}

// New builds a Filter that scores relevance using llm.
func New(llm *llmclient.Client, opts ...Option) *Filter {
	f := &Filter{llm: llm, maxTools: defaultMaxTools}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ConversationMessage is one turn of the chat-format conversation input;
// only "system" and "user" roles are considered.
type ConversationMessage struct {
	Role    string
	Content string
}

// FilterRegistry inspects registry's current tool set, and, unless it is
// already trivial (empty or terminator-only), asks the LLM which tools
// are relevant and narrows the registry to that set in place.
//
// userInput may be either a string (a single raw message) or a
// []ConversationMessage (a chat-format history) — mirroring the two
// input shapes the filter this is derived from accepted.
func (f *Filter) FilterRegistry(ctx context.Context, registry *action.Registry, userInput any, goals []goal.Goal) {
	descriptors := registry.List()
	if len(descriptors) == 0 {
		return
	}
	if len(descriptors) == 1 && descriptors[0].Name == action.TerminateName {
		return
	}

	candidates := make([]action.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Name == action.TerminateName {
			continue
		}
		candidates = append(candidates, d)
	}

	selected, ok := f.score(ctx, candidates, userInput, goals)
	if !ok {
		if f.metrics != nil {
			f.metrics.RecordRelevanceFilter("unchanged", len(candidates))
		}
		return
	}

	if registry.HasTerminator() {
		selected = appendIfMissing(selected, action.TerminateName)
	}
	registry.ReplaceWith(selected)

	if f.metrics != nil {
		f.metrics.RecordRelevanceFilter("filtered", len(selected))
	}
}

func (f *Filter) score(ctx context.Context, candidates []action.Descriptor, userInput any, goals []goal.Goal) ([]string, bool) {
	ctx, span := observability.GetTracer("agentcore/relevance").Start(ctx, observability.SpanRelevanceFilter)
	defer span.End()

	req := llmclient.Request{Messages: []llmclient.Message{
		{Role: "system", Content: systemPrompt(f.maxTools)},
		{Role: "user", Content: userPrompt(candidates, userInput, goals, f.maxTools)},
	}}

	reply, err := f.llm.Call(ctx, "relevance_filter", req)
	if err != nil {
		slog.Warn("relevance filter: llm call failed, keeping registry unchanged", "error", err)
		return nil, false
	}

	selected, err := extractSelection(reply)
	if err != nil {
		slog.Warn("relevance filter: could not extract selection, keeping registry unchanged", "error", err)
		return nil, false
	}

	known := make(map[string]struct{}, len(candidates))
	for _, d := range candidates {
		known[d.Name] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, name := range selected {
		if _, ok := known[name]; ok {
			out = append(out, name)
		}
	}
	return out, true
}

// extractSelection locates the marker pair in reply and JSON-decodes the
// array between them. Any failure — missing markers, invalid JSON, or a
// JSON value that isn't an array — is reported as an error so the caller
// can fall back to "no filtering".
func extractSelection(reply string) ([]string, error) {
	startIdx := strings.Index(reply, markerStart)
	endIdx := strings.Index(reply, markerEnd)
	if startIdx < 0 || endIdx < 0 || endIdx < startIdx {
		return nil, fmt.Errorf("relevance: markers %q/%q not found", markerStart, markerEnd)
	}

	jsonStr := strings.TrimSpace(reply[startIdx+len(markerStart) : endIdx])

	var raw any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("relevance: invalid json between markers: %w", err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("relevance: selection is not a list")
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			names = append(names, s)
		}
	}
	return names, nil
}

func appendIfMissing(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func systemPrompt(maxTools int) string {
	return fmt.Sprintf(`
You are an expert AI tool selector. Your task is to analyze user conversations and goals, then identify which tools would be most relevant and useful for addressing the user's needs.

INSTRUCTIONS:
1. Carefully analyze the user's conversation and goals (prioritize the most recent messages as they are most relevant)
2. User message carries a much heavier weight of importance (60%%) than System messages or Goals (20%% each).
3. For each available tool, assign a relevance score from 0-10 based on the criteria below
4. Select ONLY the most relevant tools that score 6 or higher (maximum %d tools total)
5. Format your response EXACTLY as specified in the FORMAT section below

TOOL SELECTION CRITERIA (Score each criterion from 0-10):
- Direct Need Satisfaction: How directly does the tool address an explicit need expressed by the user?
- Goal Alignment: How well does the tool's functionality align with the user's stated goals?
- Problem Solving: Would the tool provide specific capabilities needed to solve the user's problem?
- Domain Relevance: Is the tool specific to the domain or task the user is working on?
- Complementary Value: Would the tool work well with other highly relevant tools to address the user's needs?

SCORING METHOD:
1. For each tool, score it on each of the 5 criteria (0-10)
2. Calculate the overall relevance score as the average of these 5 scores
3. Select tools with an average score >= 6
4. If more than %d tools score >= 6, select only the top %d tools

FORMAT YOUR RESPONSE EXACTLY LIKE THIS:
%s
["tool1", "tool2", "tool3"]
%s

IMPORTANT:
- Your response MUST start with %s and end with %s
- Between these delimiters must be ONLY a valid JSON array of tool names
- Do NOT include any explanations, scores, or other text outside the delimiters
- Do NOT include any text within the delimiters except the JSON array
`, maxTools, maxTools, maxTools, markerStart, markerEnd, markerStart, markerEnd)
}

func userPrompt(candidates []action.Descriptor, userInput any, goals []goal.Goal, maxTools int) string {
	return fmt.Sprintf(`
USER CONVERSATION (user role messages are most important!):
%s

USER GOALS:
%s

AVAILABLE TOOLS:
%s

Based on the user's conversation and goals, evaluate each tool using the scoring criteria and select only the most relevant tools (maximum %d).
Remember to format your response exactly as specified, with only a JSON array of tool names between the %s and %s delimiters.
`, conversationText(userInput), goalsText(goals), toolsText(candidates), maxTools, markerStart, markerEnd)
}

func conversationText(userInput any) string {
	switch v := userInput.(type) {
	case string:
		return v
	case []ConversationMessage:
		parts := make([]string, 0, len(v))
		for _, m := range v {
			if m.Role == "system" || m.Role == "user" {
				parts = append(parts, fmt.Sprintf("%s: %s", m.Role, m.Content))
			}
		}
		return strings.Join(parts, "\n\n")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func goalsText(goals []goal.Goal) string {
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		lines = append(lines, fmt.Sprintf("Goal: %s\nDescription: %s", g.Name, g.Description))
	}
	return strings.Join(lines, "\n")
}

type renderedTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

func toolsText(candidates []action.Descriptor) string {
	rendered := make([]renderedTool, 0, len(candidates))
	for _, d := range candidates {
		rendered = append(rendered, renderedTool{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  paramsText(d.PublicParameters()),
		})
	}
	encoded, _ := json.MarshalIndent(rendered, "", "  ")
	return string(encoded)
}

// paramsText renders a schema's properties as one line per parameter,
// writing "unknown" for a missing type and "No description" for a missing
// description.
func paramsText(schema action.Schema) string {
	if len(schema.Properties) == 0 {
		return "No parameters"
	}
	lines := make([]string, 0, len(schema.Properties))
	for name, p := range schema.Properties {
		paramType := p.Type
		if paramType == "" {
			paramType = "unknown"
		}
		desc := p.Description
		if desc == "" {
			desc = "No description"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", name, paramType, desc))
	}
	return strings.Join(lines, "\n")
}
