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

package relevance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/llmclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistryWith(t *testing.T, names ...string) *action.Registry {
	t.Helper()
	catalog := action.NewCatalog()
	for _, n := range names {
		name := n
		require.NoError(t, catalog.Register(action.NewDescriptor(name, "does "+name, action.Schema{Type: "object"}, nil)))
	}
	require.NoError(t, catalog.Register(action.NewDescriptor(action.TerminateName, "terminate", action.Schema{Type: "object"}, nil).WithTerminal(true)))

	registry := action.NewRegistry(catalog)
	for _, n := range names {
		require.True(t, registry.RegisterByName(n))
	}
	require.NoError(t, registry.RegisterTerminate())
	return registry
}

func llmServerReturning(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(llmclient.Response{Reply: reply})
	}))
}

func TestFilterRegistryNarrowsToSelectedToolsAndKeepsTerminate(t *testing.T) {
	server := llmServerReturning(t, "/RELEVANT_TOOLS_START\n[\"search\"]\n/RELEVANT_TOOLS_END")
	defer server.Close()

	registry := newRegistryWith(t, "search", "send_email", "delete_account")
	f := New(llmclient.New(server.URL, 0))

	f.FilterRegistry(context.Background(), registry, "please search for go modules", []goal.Goal{{Name: "g1", Description: "help"}})

	names := registry.Names()
	assert.ElementsMatch(t, []string{"search", action.TerminateName}, names)
}

func TestFilterRegistrySkipsWhenOnlyTerminatorPresent(t *testing.T) {
	server := llmServerReturning(t, "should never be called")
	defer server.Close()

	registry := newRegistryWith(t)
	f := New(llmclient.New(server.URL, 0))

	f.FilterRegistry(context.Background(), registry, "hi", nil)

	assert.ElementsMatch(t, []string{action.TerminateName}, registry.Names())
}

func TestFilterRegistryKeepsOriginalOnMalformedReply(t *testing.T) {
	server := llmServerReturning(t, "I didn't follow the format at all")
	defer server.Close()

	registry := newRegistryWith(t, "search", "send_email")
	f := New(llmclient.New(server.URL, 0))

	f.FilterRegistry(context.Background(), registry, "hi", nil)

	assert.ElementsMatch(t, []string{"search", "send_email", action.TerminateName}, registry.Names())
}

func TestFilterRegistryKeepsOriginalWhenSelectionIsNotAList(t *testing.T) {
	server := llmServerReturning(t, "/RELEVANT_TOOLS_START\n{\"not\": \"a list\"}\n/RELEVANT_TOOLS_END")
	defer server.Close()

	registry := newRegistryWith(t, "search", "send_email")
	f := New(llmclient.New(server.URL, 0))

	f.FilterRegistry(context.Background(), registry, "hi", nil)

	assert.ElementsMatch(t, []string{"search", "send_email", action.TerminateName}, registry.Names())
}

func TestExtractSelectionFiltersUnknownNamesAtCallerLevel(t *testing.T) {
	names, err := extractSelection("/RELEVANT_TOOLS_START\n[\"search\", \"ghost_tool\"]\n/RELEVANT_TOOLS_END")
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "ghost_tool"}, names)
}
