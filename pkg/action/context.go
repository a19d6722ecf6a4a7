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
	"strings"
	"sync/atomic"

	"github.com/kadirpekel/agentcore/pkg/events"
)

// Context is the per-invocation envelope passed to every tool function.
// Its lifetime is one LLM turn; callables must not retain it past the
// turn in which they were invoked.
type Context struct {
	Principal   string
	BearerToken string
	SessionID   string
	AgentID     string
	MessageID   string

	emitter   *events.Emitter
	cancelled atomic.Bool
}

// NewContext builds a Context for one turn.
func NewContext(principal, bearerToken, sessionID, agentID, messageID string, emitter *events.Emitter) *Context {
	return &Context{
		Principal:   principal,
		BearerToken: bearerToken,
		SessionID:   sessionID,
		AgentID:     agentID,
		MessageID:   messageID,
		emitter:     emitter,
	}
}

// Emitter returns the Event Emitter attached to this turn; it may be nil.
func (c *Context) Emitter() *events.Emitter {
	if c == nil {
		return nil
	}
	return c.emitter
}

// Cancel marks the context cancelled. Checked cooperatively before the
// next LLM call and before the next tool invocation; it does not
// interrupt a call already in flight.
func (c *Context) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (c *Context) Cancelled() bool {
	if c == nil {
		return false
	}
	return c.cancelled.Load()
}

// argKeyIsPrivate reports whether an argument key is framework-injected
// and must never reach a tool's public schema or a logged event payload.
func argKeyIsPrivate(key string) bool {
	return key == "action_context" || strings.HasPrefix(key, "_")
}

// SanitizeArgs returns a copy of args with action_context and any
// underscore-prefixed (context-private) keys removed, suitable for
// logging or emitting as an event payload.
func SanitizeArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if argKeyIsPrivate(k) {
			continue
		}
		out[k] = v
	}
	return out
}
