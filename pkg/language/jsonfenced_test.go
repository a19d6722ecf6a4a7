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
	"fmt"
	"testing"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFencedParseWellFormedBlock(t *testing.T) {
	l := NewJSONFenced(true)
	reply := "Let me think about this.\n\n```action\n{\n    \"tool\": \"search\",\n    \"args\": {\"query\": \"go modules\"}\n}\n```"

	act, err := l.Parse(reply)
	require.NoError(t, err)
	assert.Equal(t, "search", act.Tool)
	assert.Equal(t, "go modules", act.Args["query"])
}

func TestJSONFencedParseToleratesTripleQuotedMultilineStrings(t *testing.T) {
	l := NewJSONFenced(true)
	reply := "```action\n{\n  \"tool\": \"write_file\",\n  \"args\": {\"body\": \"\"\"line one\nline two with \"quotes\" inside\"\"\"}\n}\n```"

	act, err := l.Parse(reply)
	require.NoError(t, err)
	assert.Equal(t, "write_file", act.Tool)
	body, _ := act.Args["body"].(string)
	assert.Contains(t, body, "line one")
	assert.Contains(t, body, "line two")
}

func TestJSONFencedParseMissingBlockIsParseFailure(t *testing.T) {
	l := NewJSONFenced(true)
	_, err := l.Parse("I refuse to use the required format.")
	require.Error(t, err)
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
}

func TestJSONFencedAdaptTerseFeedbackOnMalformedBlock(t *testing.T) {
	l := NewJSONFenced(true)
	prompt := Prompt{Messages: []Message{{Role: "system", Content: "goals"}}}

	adapted := l.Adapt(prompt, "no fence here", newParseFailure("no fence here", fmt.Errorf("boom")), 2)

	require.Len(t, adapted.Messages, 3)
	assert.Equal(t, "assistant", adapted.Messages[1].Role)
	assert.Equal(t, "no fence here", adapted.Messages[1].Content)
	assert.Equal(t, "Your last output did not contain a valid ```action block that could be parsed. \n", adapted.Messages[2].Content)
}

func TestJSONFencedAdaptFullFeedbackWhenNotTerse(t *testing.T) {
	l := NewJSONFenced(false)
	prompt := Prompt{Messages: []Message{{Role: "system", Content: "goals"}}}

	adapted := l.Adapt(prompt, "no fence here", newParseFailure("no fence here", fmt.Errorf("boom")), 2)

	feedback := adapted.Messages[2].Content
	assert.Contains(t, feedback, "Please fix your prior response.")
	assert.Contains(t, feedback, jsonFencedActionFormat)
}

func TestJSONFencedAdaptUnknownToolFeedback(t *testing.T) {
	l := NewJSONFenced(true)
	prompt := Prompt{Messages: []Message{{Role: "system", Content: "goals"}}}

	err := fmt.Errorf("tool %q: %w", "frobnicate", action.ErrUnknownTool)
	adapted := l.Adapt(prompt, `{"tool": "frobnicate", "args": {}}`, err, 1)

	assert.Contains(t, adapted.Messages[2].Content, "Your last output contained an unknown action.")
}

func TestJSONFencedConstructIncludesToolsAndMemory(t *testing.T) {
	l := NewJSONFenced(true)
	mem := memory.New()
	mem.AppendEnvironment("it worked")

	prompt := l.Construct(
		[]goal.Goal{{Name: "g1", Description: "help the user"}},
		mem,
		[]ToolSpec{{Name: "search", Description: "search the web", Parameters: action.Schema{Type: "object"}}},
	)

	require.Len(t, prompt.Messages, 3)
	assert.Contains(t, prompt.Messages[1].Content, "search")
	assert.Contains(t, prompt.Messages[1].Content, "```action")
	assert.Equal(t, "it worked", prompt.Messages[2].Content)
	assert.Empty(t, prompt.Tools, "variant J carries tools inline, not structurally")
}
