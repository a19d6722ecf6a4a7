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

package promptasm

import (
	"testing"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/language"
	"github.com/kadirpekel/agentcore/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleIsDeterministic(t *testing.T) {
	catalog := action.DefaultCatalog()
	registry := action.NewRegistry(catalog)
	require.NoError(t, registry.RegisterTerminate())

	mem := memory.New()
	mem.AppendUser("do something useful")
	goals := []goal.Goal{{Name: "g1", Description: "be helpful"}}

	asm := New(language.NewJSONFenced(true))

	first := asm.Assemble(goals, mem, registry)
	second := asm.Assemble(goals, mem, registry)

	assert.Equal(t, first, second)
	assert.Contains(t, first.Messages[1].Content, "terminate")
}
