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

	"github.com/kadirpekel/agentcore/pkg/memory"
)

// ProjectMemory maps mem's forwardable entries to chat-role messages. All
// three variants share this projection: system entries stay system,
// environment and "other" entries become user turns, and assistant
// entries carrying a skipped-step marker are rendered as a synthesised
// "Skipped step" sentence rather than their raw payload.
func ProjectMemory(mem *memory.Memory) []Message {
	entries := mem.Forwardable()
	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, Message{Role: roleFor(e), Content: contentFor(e)})
	}
	return out
}

func roleFor(e memory.Entry) string {
	switch e.Type {
	case memory.TypeAssistant:
		return "assistant"
	case memory.TypeSystem:
		return "system"
	default:
		return "user"
	}
}

func contentFor(e memory.Entry) string {
	if e.Type == memory.TypeAssistant && e.Skipped != nil {
		tool := e.Skipped.Tool
		if tool == "" {
			tool = "Unknown tool"
		}
		reason := e.Skipped.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		return fmt.Sprintf("Skipped step: '%s' \nSkipped reason: %s", tool, reason)
	}
	if e.HasContent() {
		return e.Content
	}
	serialized, err := e.Serialized()
	if err != nil {
		return ""
	}
	return serialized
}
