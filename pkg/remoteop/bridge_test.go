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

package remoteop

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveNamePrefersCustomName(t *testing.T) {
	op := OperationDescriptor{ID: "getWeather", CustomName: "weather"}
	assert.Equal(t, "weather", op.EffectiveName())

	op2 := OperationDescriptor{ID: "getWeather"}
	assert.Equal(t, "getWeather", op2.EffectiveName())
}

func TestEffectiveSchemaPrecedence(t *testing.T) {
	fromParams := OperationDescriptor{Params: []action.LegacyParam{{Name: "q", Description: "a string, required"}}}
	s := fromParams.EffectiveSchema()
	assert.Equal(t, "string", s.Properties["q"].Type)
	assert.True(t, s.IsRequired("q"))

	legacySchema := action.Schema{Type: "object", Properties: map[string]action.Property{"x": {Type: "boolean"}}}
	withSchema := OperationDescriptor{Schema: &legacySchema, Params: []action.LegacyParam{{Name: "q", Description: "x"}}}
	assert.Equal(t, legacySchema, withSchema.EffectiveSchema())

	params := action.Schema{Type: "object", Properties: map[string]action.Property{"y": {Type: "number"}}}
	withParameters := OperationDescriptor{Parameters: &params, Schema: &legacySchema}
	assert.Equal(t, params, withParameters.EffectiveSchema())
}

func TestEffectiveSchemaFallsThroughPresentButEmptySchema(t *testing.T) {
	empty := action.Schema{}
	legacySchema := action.Schema{Type: "object", Properties: map[string]action.Property{"x": {Type: "boolean"}}}

	withEmptyParameters := OperationDescriptor{Parameters: &empty, Schema: &legacySchema}
	assert.Equal(t, legacySchema, withEmptyParameters.EffectiveSchema())

	withEmptyBoth := OperationDescriptor{
		Parameters: &empty,
		Schema:     &empty,
		Params:     []action.LegacyParam{{Name: "q", Description: "a string"}},
	}
	s := withEmptyBoth.EffectiveSchema()
	assert.Equal(t, "string", s.Properties["q"].Type)
}

func TestCompileAppliesAIAndManualBindings(t *testing.T) {
	op := OperationDescriptor{
		ID:   "createTicket",
		Name: "createTicket",
		Parameters: &action.Schema{
			Type: "object",
			Properties: map[string]action.Property{
				"title":    {Type: "string", Description: "ticket title"},
				"severity": {Type: "string", Description: "severity level"},
				"source":   {Type: "string", Description: "source system"},
			},
			Required: []string{"title", "severity", "source"},
		},
		Bindings: map[string]Binding{
			"severity": {Mode: BindingModeAI, Value: "Always set to the urgency implied by the user's message"},
			"source":   {Mode: BindingModeManual, Value: "agentcore"},
		},
	}

	b := New("http://example.invalid", 0)
	d := b.Compile(op)

	_, hasSource := d.Parameters.Properties["source"]
	assert.False(t, hasSource, "manually bound params must be removed from the exposed schema")
	assert.False(t, d.Parameters.IsRequired("source"))

	assert.Equal(t, "Always set to the urgency implied by the user's message", d.Parameters.Properties["severity"].Description)
	assert.Equal(t, "string", d.Parameters.Properties["severity"].Type, "AI binding must not change the type")
	assert.True(t, d.Parameters.IsRequired("severity"), "AI binding must not change required-ness")
}

func TestInvokeOverlaysManualBindingsAndCoercesBooleans(t *testing.T) {
	var capturedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data struct {
				Action struct {
					Name    string         `json:"name"`
					Payload map[string]any `json:"payload"`
				} `json:"action"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		capturedPayload = body.Data.Action.Payload

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"result": map[string]any{"status": "created"}},
		})
	}))
	defer server.Close()

	op := OperationDescriptor{
		ID: "createTicket",
		Parameters: &action.Schema{
			Type:       "object",
			Properties: map[string]action.Property{"title": {Type: "string"}, "urgent": {Type: "boolean"}},
		},
		Bindings: map[string]Binding{
			"urgent": {Mode: BindingModeManual, Value: "true"},
		},
	}

	b := New(server.URL, 0)
	d := b.Compile(op)

	actx := action.NewContext("user", "tok", "sess-1", "agent-1", "msg-1", nil)
	result := d.Invoke(actx, map[string]any{"title": "disk full"})

	assert.Equal(t, "disk full", capturedPayload["title"])
	assert.Equal(t, true, capturedPayload["urgent"], "manual binding literal \"true\" must coerce to bool")

	out, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "created", out["status"], "response must unwrap the data.result envelope")
}

func TestInvokeNonSuccessReturnsRawMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "not authorized"})
	}))
	defer server.Close()

	op := OperationDescriptor{ID: "createTicket", Parameters: &action.Schema{Type: "object"}}
	b := New(server.URL, 0)
	d := b.Compile(op)

	actx := action.NewContext("user", "tok", "sess-1", "agent-1", "msg-1", nil)
	result := d.Invoke(actx, map[string]any{})

	out, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "not authorized", out["message"])
}

func TestUnwrapStopsAtDepth(t *testing.T) {
	nested := map[string]any{
		"result": map[string]any{
			"result": map[string]any{
				"result": map[string]any{
					"result": "too deep",
				},
			},
		},
	}

	got := unwrap(nested, maxUnwrapDepth)
	inner, ok := got.(map[string]any)
	require.True(t, ok, "unwrap must stop after exactly maxUnwrapDepth layers")
	assert.Equal(t, "too deep", inner["result"])
}
