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
	"strings"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/memory"
)

var _ Language = (*Natural)(nil)

// Natural is Variant N: no tool schema and no parsing contract at all.
// Every reply is treated as a terminate message. Useful for a pure
// chat-style session with no tool use, or as a degenerate baseline.
type Natural struct{}

// NewNatural builds the natural-language variant.
func NewNatural() *Natural { return &Natural{} }

func (l *Natural) Construct(goals []goal.Goal, mem *memory.Memory, _ []ToolSpec) Prompt {
	messages := []Message{{Role: "system", Content: formatGoalsNatural(goals)}}
	messages = append(messages, ProjectMemory(mem)...)
	return Prompt{Messages: messages}
}

func (l *Natural) Parse(reply string) (Action, error) {
	return Action{Tool: action.TerminateName, Args: map[string]any{"message": reply}}, nil
}

func (l *Natural) Adapt(prompt Prompt, _ string, _ error, _ int) Prompt {
	return prompt
}

func formatGoalsNatural(goals []goal.Goal) string {
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		lines = append(lines, g.Description)
	}
	return strings.Join(lines, "\n")
}
