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

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOrderPreserved(t *testing.T) {
	m := New()
	m.AppendUser("do the thing")
	m.AppendAssistantIntent("search", map[string]any{"q": "thing"})
	m.AppendEnvironment("found it")

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, TypeUser, entries[0].Type)
	assert.Equal(t, TypeAssistant, entries[1].Type)
	assert.Equal(t, TypeEnvironment, entries[2].Type)
	assert.Equal(t, "found it", entries[2].Content)
}

func TestMemoryForwardableDropsPromptEntries(t *testing.T) {
	m := New()
	m.AppendUser("task")
	m.AppendPrompt(map[string]any{"messages": []any{"task"}})
	m.AppendAssistant("ok")

	all := m.Entries()
	require.Len(t, all, 3)

	forwardable := m.Forwardable()
	require.Len(t, forwardable, 2)
	for _, e := range forwardable {
		assert.NotEqual(t, TypePrompt, e.Type)
	}
}

func TestMemoryNeverRewritten(t *testing.T) {
	m := New()
	m.AppendUser("first")
	snapshot := m.Entries()
	m.AppendUser("second")

	assert.Len(t, snapshot, 1, "earlier snapshot must not observe later appends")
	assert.Equal(t, 2, m.Len())
}

func TestEntrySerializedFallsBackToPayload(t *testing.T) {
	e := Entry{Type: TypeEnvironment, Payload: map[string]any{"status": "ok"}}
	assert.False(t, e.HasContent())

	serialized, err := e.Serialized()
	require.NoError(t, err)
	assert.Contains(t, serialized, "\"status\": \"ok\"")
}

func TestAppendAssistantSkipped(t *testing.T) {
	m := New()
	m.AppendAssistantSkipped("deploy", "precondition not met")

	entries := m.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Skipped)
	assert.Equal(t, "deploy", entries[0].Skipped.Tool)
	assert.Equal(t, "precondition not met", entries[0].Skipped.Reason)
}
