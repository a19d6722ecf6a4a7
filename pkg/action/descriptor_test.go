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

package action

import (
	"testing"

	"github.com/kadirpekel/agentcore/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeReturnsNilOnToolError(t *testing.T) {
	d := NewDescriptor("flaky", "", Schema{Type: "object"}, func(actx *Context, args map[string]any) (any, error) {
		return "should be discarded", errBoom
	})

	var errorEvents []string
	emitter := events.New(func(name string, payload map[string]any) {
		errorEvents = append(errorEvents, name)
	})
	actx := NewContext("user-1", "token", "sess-1", "agent-1", "msg-1", emitter)

	result := d.Invoke(actx, map[string]any{})

	assert.Nil(t, result, "a tool error must not propagate; the wrapper returns nil")
	assert.Contains(t, errorEvents, "tools/flaky/error")
}

func TestInvokeReturnsNilOnPanic(t *testing.T) {
	d := NewDescriptor("panicky", "", Schema{Type: "object"}, func(actx *Context, args map[string]any) (any, error) {
		panic("internal failure")
	})

	actx := NewContext("user-1", "token", "sess-1", "agent-1", "msg-1", nil)

	assert.NotPanics(t, func() {
		result := d.Invoke(actx, map[string]any{})
		assert.Nil(t, result)
	})
}

func TestInvokeEmitsStartEndWithSanitizedArgs(t *testing.T) {
	d := NewDescriptor("search", "", Schema{Type: "object"}, func(actx *Context, args map[string]any) (any, error) {
		return "result!", nil
	})

	var names []string
	var payloads []map[string]any
	emitter := events.New(func(name string, payload map[string]any) {
		names = append(names, name)
		payloads = append(payloads, payload)
	})
	actx := NewContext("u", "t", "s", "a", "m", emitter)

	result := d.Invoke(actx, map[string]any{"q": "go", "action_context": "should be stripped", "_internal": 1})

	require.Equal(t, "result!", result)
	require.Len(t, names, 2)
	assert.Equal(t, "tools/search/start", names[0])
	assert.Equal(t, "tools/search/end", names[1])

	_, hasActx := payloads[0]["action_context"]
	_, hasInternal := payloads[0]["_internal"]
	assert.False(t, hasActx)
	assert.False(t, hasInternal)
	assert.Equal(t, "go", payloads[0]["q"])
	assert.Equal(t, "result!", payloads[1]["result"])
}

func TestPublicParametersExcludesPrivateKeys(t *testing.T) {
	d := NewDescriptor("search", "", Schema{
		Type: "object",
		Properties: map[string]Property{
			"action_context": {Type: "object"},
			"_internal":      {Type: "string"},
			"q":              {Type: "string"},
		},
		Required: []string{"q"},
	}, nil)

	pub := d.PublicParameters()
	_, hasActx := pub.Properties["action_context"]
	_, hasInternal := pub.Properties["_internal"]
	_, hasQ := pub.Properties["q"]

	assert.False(t, hasActx)
	assert.False(t, hasInternal)
	assert.True(t, hasQ)
}

func TestStatusFormatSubstitutesPlaceholders(t *testing.T) {
	assert.Equal(t, "searching for go", formatStatus("searching for {q}", map[string]any{"q": "go"}))
}
