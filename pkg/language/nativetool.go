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
	"strings"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/memory"
)

// exitAgentLoopSentinel, when present in a reply the model insisted on
// sending as plain text rather than a tool call, forces early session
// termination with a recorded error rather than burning a parse retry.
const exitAgentLoopSentinel = "EXIT_AGENT_LOOP"

// toolDescriptionLimit mirrors the cap applied to each tool's
// description when it is serialised into the native tool-calling
// schema; well past this length providers start rejecting or truncating
// the request themselves.
const toolDescriptionLimit = 1024

var _ Language = (*NativeTool)(nil)

// NativeTool is Variant F: the tool set is carried as a structured
// schema and the reply is expected to be a JSON tool call, not prose.
type NativeTool struct {
	// AllowNonToolOutput, when true (the default), treats any reply that
	// fails to JSON-decode as a plain message and synthesises a
	// terminate call around it instead of retrying. When false, only the
	// EXIT_AGENT_LOOP sentinel gets that treatment; anything else is a
	// ParseFailure.
	AllowNonToolOutput bool
}

// NewNativeTool builds the native tool-calling variant.
func NewNativeTool(allowNonToolOutput bool) *NativeTool {
	return &NativeTool{AllowNonToolOutput: allowNonToolOutput}
}

func (l *NativeTool) Construct(goals []goal.Goal, mem *memory.Memory, tools []ToolSpec) Prompt {
	messages := []Message{{Role: "system", Content: formatGoalsStructured(goals)}}
	messages = append(messages, ProjectMemory(mem)...)
	return Prompt{Messages: messages, Tools: truncateToolDescriptions(tools)}
}

func truncateToolDescriptions(tools []ToolSpec) []ToolSpec {
	out := make([]ToolSpec, len(tools))
	for i, t := range tools {
		if len(t.Description) > toolDescriptionLimit {
			t.Description = t.Description[:toolDescriptionLimit]
		}
		out[i] = t
	}
	return out
}

func (l *NativeTool) Parse(reply string) (Action, error) {
	var decoded fencedAction
	if err := json.Unmarshal([]byte(reply), &decoded); err == nil {
		return Action{Tool: decoded.Tool, Args: decoded.Args}, nil
	}

	if l.AllowNonToolOutput {
		return Action{Tool: action.TerminateName, Args: map[string]any{"message": reply}}, nil
	}

	if strings.Contains(reply, exitAgentLoopSentinel) {
		message := strings.TrimSpace(strings.ReplaceAll(reply, exitAgentLoopSentinel, ""))
		return Action{
			Tool:  action.TerminateName,
			Args:  map[string]any{"message": message},
			Error: "Agent Loop Terminated Early",
		}, nil
	}

	return Action{}, newParseFailure(reply, errNotAToolCall)
}

func (l *NativeTool) Adapt(prompt Prompt, reply string, _ error, _ int) Prompt {
	messages := append(append([]Message{}, prompt.Messages...),
		Message{Role: "assistant", Content: reply},
		Message{Role: "system", Content: "CRITICAL!!! You must ALWAYS choose a tool to use. "},
		Message{Role: "user", Content: "You did not call a valid tool. Please choose an available tool and output a tool call."},
	)
	return Prompt{Messages: messages, Tools: prompt.Tools}
}
