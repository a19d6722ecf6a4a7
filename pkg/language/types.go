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

// Package language implements the three interchangeable Agent Language
// strategies: how goals, memory, and the tool set are rendered into a
// prompt, how a raw LLM reply is parsed into a tool invocation, and how
// the prompt is mutated after a parse failure so the model can recover.
package language

import (
	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/llmclient"
	"github.com/kadirpekel/agentcore/pkg/memory"
)

// Message is one role-tagged chat turn, forwarded verbatim to the LLM
// client.
type Message struct {
	Role    string
	Content string
}

// ToolSpec is a tool rendered for prompt purposes: either folded into an
// inline JSON description (Variant J) or carried as a structured
// tool-schema entry (Variant F).
type ToolSpec struct {
	Name        string
	Description string
	Parameters  action.Schema
}

// Prompt is everything one call to the LLM needs: the message list and,
// for the native tool-calling variant, the structured tool schema
// carried on the side.
type Prompt struct {
	Messages []Message
	Tools    []ToolSpec
}

// Action is the result of parsing an LLM reply: the tool to invoke, its
// arguments, and, for the early-exit sentinel case, an error note carried
// alongside a synthesised terminate call.
type Action struct {
	Tool  string
	Args  map[string]any
	Error string
}

// Language is the strategy interface implemented by each variant.
type Language interface {
	// Construct renders goals, memory, and the available tools into a
	// Prompt ready to send to the LLM.
	Construct(goals []goal.Goal, mem *memory.Memory, tools []ToolSpec) Prompt

	// Parse turns a raw LLM reply into an Action, or returns a
	// *ParseFailure if the reply could not be interpreted.
	Parse(reply string) (Action, error)

	// Adapt returns a new Prompt that gives the model another chance
	// after a parse or dispatch failure. prompt is the Prompt that
	// produced reply; err is the failure (*ParseFailure or an
	// action.ErrUnknownTool-wrapping error); retriesLeft is informational
	// only, carried through for variants that want to vary their
	// wording near the end of the retry budget.
	Adapt(prompt Prompt, reply string, err error, retriesLeft int) Prompt
}

// descriptorToolSpec projects an action.Descriptor's public surface into
// a ToolSpec for prompt rendering.
func descriptorToolSpec(d action.Descriptor) ToolSpec {
	return ToolSpec{Name: d.Name, Description: d.Description, Parameters: d.PublicParameters()}
}

// ToolSpecsFromDescriptors projects every descriptor in the list into a
// ToolSpec, the terminal tool included; nothing is skipped, since every
// variant's rendering includes terminate as an ordinary tool choice.
func ToolSpecsFromDescriptors(descriptors []action.Descriptor) []ToolSpec {
	specs := make([]ToolSpec, 0, len(descriptors))
	for _, d := range descriptors {
		specs = append(specs, descriptorToolSpec(d))
	}
	return specs
}

// llmToolDefinitions converts ToolSpecs into the wire shape the llmclient
// Request carries for native tool-calling.
func llmToolDefinitions(tools []ToolSpec) []llmclient.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	out := make([]llmclient.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, llmclient.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaToMap(t.Parameters),
		})
	}
	return out
}

func schemaToMap(s action.Schema) map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Items != nil {
			prop["items"] = p.Items
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[name] = prop
	}
	m := map[string]any{"type": s.Type, "properties": props}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

// ToLLMRequest converts a Prompt into the Request the llmclient sends.
// Variant-specific construct/adapt already folded any tool description
// into Prompt.Messages where needed; ToLLMRequest only needs to carry
// Prompt.Tools through as structured tool definitions.
func ToLLMRequest(p Prompt) llmclient.Request {
	messages := make([]llmclient.Message, 0, len(p.Messages))
	for _, m := range p.Messages {
		messages = append(messages, llmclient.Message{Role: m.Role, Content: m.Content})
	}
	return llmclient.Request{Messages: messages, Tools: llmToolDefinitions(p.Tools)}
}
