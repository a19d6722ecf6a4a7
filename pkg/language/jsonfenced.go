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

package language

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/memory"
)

const jsonFencedActionFormat = `
<Stop and think step by step. Insert a rich description of your step by step thoughts here.>

` + "```action" + `
{
    "tool": "tool_name",
    "args": {...fill in any required arguments here...}
}
` + "```"

const (
	jsonFencedStartMarker = "```action"
	jsonFencedEndMarker   = "```"
)

var _ Language = (*JSONFenced)(nil)

// JSONFenced is Variant J: every reply must carry a fenced ```action
// block containing a JSON object {tool, args}.
type JSONFenced struct {
	// TerseParseFeedback controls the wording of the feedback message
	// appended to the prompt after a malformed (non-UnknownTool) parse
	// failure.
	//
	// The variant this is derived from built that feedback across four
	// adjacent string-literal lines with no line-continuation between
	// them, so only the first line was ever actually assigned to the
	// feedback variable — the other three were dead statements. The
	// practical effect seen by the model was a terse one-line nudge, not
	// the fully-worded, four-part message the source appears to intend.
	// TerseParseFeedback defaults to true to preserve that terse
	// behavior; set it false to send the complete message instead.
	TerseParseFeedback bool
}

// NewJSONFenced builds the JSON-fenced variant.
func NewJSONFenced(terseParseFeedback bool) *JSONFenced {
	return &JSONFenced{TerseParseFeedback: terseParseFeedback}
}

func (l *JSONFenced) Construct(goals []goal.Goal, mem *memory.Memory, tools []ToolSpec) Prompt {
	messages := []Message{{Role: "system", Content: formatGoalsStructured(goals)}}
	messages = append(messages, Message{Role: "system", Content: formatActionsJSON(tools)})
	messages = append(messages, ProjectMemory(mem)...)
	return Prompt{Messages: messages}
}

func formatGoalsStructured(goals []goal.Goal) string {
	const sep = "\n-------------------\n"
	parts := make([]string, 0, len(goals))
	for _, g := range goals {
		parts = append(parts, fmt.Sprintf("%s:%s%s%s", g.Name, sep, g.Description, sep))
	}
	return strings.Join(parts, "\n\n")
}

type actionDescription struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Parameters  action.Schema `json:"parameters"`
}

func formatActionsJSON(tools []ToolSpec) string {
	descriptions := make([]actionDescription, 0, len(tools))
	for _, t := range tools {
		descriptions = append(descriptions, actionDescription{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	encoded, _ := json.MarshalIndent(descriptions, "", "    ")

	return fmt.Sprintf(`
Available Tools: %s

When you are done, terminate the conversation by using the "terminate" tool and I will
provide the results to the user.

Important!!! Every response MUST have an 'action' which is defined by outputting an  `+"```action"+` block containing valid json.
You must ALWAYS respond in this format:

%s
`, string(encoded), jsonFencedActionFormat)
}

func (l *JSONFenced) Parse(reply string) (Action, error) {
	raw, err := extractFencedBlock(reply, jsonFencedStartMarker, jsonFencedEndMarker)
	if err != nil {
		return Action{}, newParseFailure(reply, err)
	}

	decoded, err := decodeFencedJSON(raw)
	if err != nil {
		return Action{}, newParseFailure(reply, err)
	}

	return Action{Tool: decoded.Tool, Args: decoded.Args}, nil
}

func (l *JSONFenced) Adapt(prompt Prompt, reply string, err error, _ int) Prompt {
	var feedback string
	if errors.Is(err, action.ErrUnknownTool) {
		feedback = fmt.Sprintf("Your last output contained an unknown action. %s.", err)
	} else if l.TerseParseFeedback {
		feedback = "Your last output did not contain a valid ```action block that could be parsed. \n"
	} else {
		feedback = fmt.Sprintf(
			"Your last output did not contain a valid ```action block that could be parsed. \n"+
				"Please fix your prior response. \n"+
				"Make sure that it has the correct format: \n"+
				"%s",
			jsonFencedActionFormat,
		)
	}

	messages := append(append([]Message{}, prompt.Messages...),
		Message{Role: "assistant", Content: reply},
		Message{Role: "user", Content: feedback},
	)
	return Prompt{Messages: messages}
}

type fencedAction struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

func extractFencedBlock(reply, startMarker, endMarker string) (string, error) {
	stripped := strings.TrimSpace(reply)
	startIdx := strings.Index(stripped, startMarker)
	if startIdx < 0 {
		return "", fmt.Errorf("no %q block found", startMarker)
	}
	endIdx := strings.LastIndex(stripped, endMarker)
	contentStart := startIdx + len(startMarker)
	if endIdx < contentStart {
		return "", fmt.Errorf("no closing %q fence found after %q", endMarker, startMarker)
	}
	return strings.TrimSpace(stripped[contentStart:endIdx]), nil
}

// tripleQuoted matches a '''...''' or """...""" region, DOTALL, so it
// can span multiple lines.
var tripleQuoted = regexp.MustCompile(`(?s)("""|''')(.*?)("""|''')`)

// decodeFencedJSON decodes raw as the {tool, args} object. If raw is not
// directly valid JSON — commonly because the model wrote a Python-style
// triple-quoted multi-line string literal somewhere inside an argument
// value, which JSON has no syntax for — it rewrites each such region
// into a properly escaped JSON string literal and retries once.
func decodeFencedJSON(raw string) (fencedAction, error) {
	var out fencedAction
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	rewritten := tripleQuoted.ReplaceAllStringFunc(raw, func(block string) string {
		inner := block[3 : len(block)-3]
		inner = strings.ReplaceAll(inner, `\`, `\\`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		inner = strings.ReplaceAll(inner, "\n", `\n`)
		return `"` + inner + `"`
	})

	if err := json.Unmarshal([]byte(rewritten), &out); err != nil {
		return fencedAction{}, fmt.Errorf("decode action block: %w", err)
	}
	return out, nil
}
