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

// Package events implements the out-of-band event sink attached to every
// agent session. The loop and the tool wrapper push named events through
// it; failures in the sink must never affect the loop's own correctness.
package events

import "log/slog"

// Emitter is an opaque sink for named, out-of-band progress events. A nil
// *Emitter is valid and simply drops every event.
type Emitter struct {
	sink func(name string, payload map[string]any)
}

// New wraps sink as an Emitter. A nil sink is accepted and turns Emit into
// a no-op.
func New(sink func(name string, payload map[string]any)) *Emitter {
	return &Emitter{sink: sink}
}

// Emit forwards name/payload to the underlying sink. A panic inside the
// sink is recovered and logged — it must never propagate into the agent
// loop or a tool invocation.
func (e *Emitter) Emit(name string, payload map[string]any) {
	if e == nil || e.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("event sink panicked", "event", name, "recover", r)
		}
	}()
	e.sink(name, payload)
}

// ToolStart emits "tools/<tool>/start" with sanitized args.
func (e *Emitter) ToolStart(tool string, args map[string]any) {
	e.Emit("tools/"+tool+"/start", args)
}

// ToolEnd emits "tools/<tool>/end" with sanitized args plus the result.
func (e *Emitter) ToolEnd(tool string, args map[string]any, result any) {
	payload := cloneArgs(args)
	payload["result"] = result
	e.Emit("tools/"+tool+"/end", payload)
}

// ToolError emits "tools/<tool>/error" with sanitized args plus the
// exception and a traceback/stack description.
func (e *Emitter) ToolError(tool string, args map[string]any, exception error, traceback string) {
	payload := cloneArgs(args)
	payload["exception"] = exception.Error()
	payload["traceback"] = traceback
	e.Emit("tools/"+tool+"/error", payload)
}

// AgentStatus emits "agent/status" with a formatted status string.
func (e *Emitter) AgentStatus(status string) {
	e.Emit("agent/status", map[string]any{"status": status})
}

func cloneArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+2)
	for k, v := range args {
		out[k] = v
	}
	return out
}
