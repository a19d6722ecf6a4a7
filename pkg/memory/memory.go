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

// Package memory implements the agent loop's ordered, append-only session
// history. Entries are never rewritten, only appended; the first user
// entry in a well-formed session is the originating task.
package memory

import (
	"encoding/json"
	"sync"
)

// EntryType classifies a Memory entry for the purposes of prompt
// projection (see pkg/language).
type EntryType string

const (
	TypeSystem      EntryType = "system"
	TypeUser        EntryType = "user"
	TypeAssistant   EntryType = "assistant"
	TypeEnvironment EntryType = "environment"

	// TypePrompt entries are provenance only: they record exactly what was
	// sent to the LLM on a given turn, and are never themselves forwarded
	// to the LLM on a later turn.
	TypePrompt EntryType = "prompt"
)

// Entry is a single, immutable memory record.
type Entry struct {
	Type EntryType

	// Content is the textual form of the entry, when one exists.
	Content string

	// Payload carries a structured value when Content is empty, such as
	// an assistant's {tool, args} intent or a non-string tool result.
	Payload map[string]any

	// Skipped, when non-nil, marks this assistant entry as a skipped-step
	// notice rather than a normal reply; the language package projects it
	// to a synthesised "Skipped step" sentence.
	Skipped *SkippedStep
}

// SkippedStep records why a tool invocation was skipped rather than run.
type SkippedStep struct {
	Tool   string
	Reason string
}

// HasContent reports whether Content should be used as-is, versus falling
// back to serializing Payload.
func (e Entry) HasContent() bool {
	return e.Content != ""
}

// Serialized renders Payload as indented JSON, for use when an entry has
// no plain-text Content.
func (e Entry) Serialized() (string, error) {
	b, err := json.MarshalIndent(e.Payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Memory is the ordered, append-only sequence of Entry records for one
// agent session. It is safe for concurrent reads; the agent loop is the
// sole writer.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{}
}

// Append adds e to the end of the sequence.
func (m *Memory) Append(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// AppendSystem appends a system-role entry.
func (m *Memory) AppendSystem(content string) {
	m.Append(Entry{Type: TypeSystem, Content: content})
}

// AppendUser appends a user-role entry.
func (m *Memory) AppendUser(content string) {
	m.Append(Entry{Type: TypeUser, Content: content})
}

// AppendAssistant appends a plain assistant reply.
func (m *Memory) AppendAssistant(content string) {
	m.Append(Entry{Type: TypeAssistant, Content: content})
}

// AppendAssistantIntent appends the assistant's stated intent to invoke a
// tool: {tool, args}, serialized to indented JSON on projection.
func (m *Memory) AppendAssistantIntent(tool string, args map[string]any) {
	m.Append(Entry{
		Type:    TypeAssistant,
		Payload: map[string]any{"tool": tool, "args": args},
	})
}

// AppendAssistantSkipped appends an assistant entry marking a skipped tool
// invocation.
func (m *Memory) AppendAssistantSkipped(tool, reason string) {
	m.Append(Entry{Type: TypeAssistant, Skipped: &SkippedStep{Tool: tool, Reason: reason}})
}

// AppendEnvironment appends the observed result of a tool invocation. If
// result is already a string it is used verbatim; otherwise it is carried
// as a structured payload for on-demand serialization.
func (m *Memory) AppendEnvironment(result any) {
	if s, ok := result.(string); ok {
		m.Append(Entry{Type: TypeEnvironment, Content: s})
		return
	}
	payload, _ := result.(map[string]any)
	if payload == nil {
		payload = map[string]any{"result": result}
	}
	m.Append(Entry{Type: TypeEnvironment, Payload: payload})
}

// AppendPrompt records, as provenance, exactly what was sent to the LLM on
// this turn. Prompt entries are never forwarded to the LLM.
func (m *Memory) AppendPrompt(payload map[string]any) {
	m.Append(Entry{Type: TypePrompt, Payload: payload})
}

// Entries returns a snapshot copy of the full, ordered sequence, including
// prompt-type provenance entries.
func (m *Memory) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Forwardable returns the snapshot sequence with TypePrompt entries
// dropped, i.e. exactly what the language layer should project into a
// prompt.
func (m *Memory) Forwardable() []Entry {
	all := m.Entries()
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Type == TypePrompt {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len returns the number of entries, including prompt-type ones.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
