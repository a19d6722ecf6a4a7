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

// Package promptasm assembles the per-turn Prompt from goals, memory,
// and the currently invokable tool set. It holds no state of its own:
// given the same inputs it always produces the same Prompt, delegating
// the variant-specific rendering rules to the active language.Language.
package promptasm

import (
	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/language"
	"github.com/kadirpekel/agentcore/pkg/memory"
)

// Assembler composes a Prompt for one loop iteration.
type Assembler struct {
	lang language.Language
}

// New builds an Assembler bound to one Language variant. The loop builds
// one Assembler per session and keeps it for the session's lifetime.
func New(lang language.Language) *Assembler {
	return &Assembler{lang: lang}
}

// Assemble projects registry's current snapshot into ToolSpecs and
// delegates to the language variant's Construct.
func (a *Assembler) Assemble(goals []goal.Goal, mem *memory.Memory, registry *action.Registry) language.Prompt {
	tools := language.ToolSpecsFromDescriptors(registry.List())
	return a.lang.Construct(goals, mem, tools)
}
