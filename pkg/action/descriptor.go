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
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/kadirpekel/agentcore/pkg/events"
)

// Func is the raw, unwrapped form of a tool callable.
type Func func(actx *Context, args map[string]any) (any, error)

// Descriptor is metadata plus a callable for one tool. It is a value:
// registering it publishes a new registry snapshot rather than mutating a
// shared one.
type Descriptor struct {
	Name        string
	Description string
	Parameters  Schema
	Output      *Schema
	Terminal    bool
	Tags        []string

	// StatusFormat, ResultStatusFormat, and ErrorStatusFormat are optional
	// "agent/status" templates with {key} placeholders substituted from
	// the sanitized args (and, for ResultStatusFormat, also {result}).
	StatusFormat       string
	ResultStatusFormat string
	ErrorStatusFormat  string

	fn Func
}

// NewDescriptor builds a Descriptor around a raw callable.
func NewDescriptor(name, description string, parameters Schema, fn Func) Descriptor {
	return Descriptor{Name: name, Description: description, Parameters: parameters, fn: fn}
}

// WithTerminal marks the descriptor as the loop's terminal tool.
func (d Descriptor) WithTerminal(terminal bool) Descriptor {
	d.Terminal = terminal
	return d
}

// WithTags attaches tags used by tag-based registry construction.
func (d Descriptor) WithTags(tags ...string) Descriptor {
	d.Tags = tags
	return d
}

// PublicParameters returns the parameter schema with action_context and
// any underscore-prefixed, framework-injected parameter stripped.
func (d Descriptor) PublicParameters() Schema {
	out := d.Parameters.Clone()
	for name := range out.Properties {
		if argKeyIsPrivate(name) {
			out = out.RemoveParameter(name)
		}
	}
	return out
}

// Invoke runs the wrapped callable. It fires tools/<name>/start, a
// pre-call agent/status, the raw callable, tools/<name>/end or
// tools/<name>/error, and a post-call agent/status.
//
// An error or panic raised by the raw callable does not propagate: it is
// captured, reported via tools/<name>/error, and Invoke returns nil. This
// mirrors a historical behavior of the tool wrapper this was derived from
// (swallow-and-log rather than propagate) and is relied upon by callers
// that expect a failed tool call to look like "no result" rather than an
// aborted turn. A failure inside the event sink itself is independently
// swallowed and never affects the callable's outcome.
func (d Descriptor) Invoke(actx *Context, args map[string]any) any {
	sanitized := SanitizeArgs(args)
	emitter := actx.Emitter()

	emitter.ToolStart(d.Name, sanitized)
	if d.StatusFormat != "" {
		emitter.AgentStatus(formatStatus(d.StatusFormat, sanitized))
	}

	result, ok := d.callSafely(actx, args, sanitized, emitter)
	if !ok {
		return nil
	}

	emitter.ToolEnd(d.Name, sanitized, result)
	if d.ResultStatusFormat != "" {
		withResult := make(map[string]any, len(sanitized)+1)
		for k, v := range sanitized {
			withResult[k] = v
		}
		withResult["result"] = result
		emitter.AgentStatus(formatStatus(d.ResultStatusFormat, withResult))
	}

	return result
}

func (d Descriptor) callSafely(actx *Context, args, sanitized map[string]any, emitter *events.Emitter) (result any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			d.reportError(emitter, sanitized, err, string(debug.Stack()))
			result, ok = nil, false
		}
	}()

	res, err := d.fn(actx, args)
	if err != nil {
		d.reportError(emitter, sanitized, err, string(debug.Stack()))
		return nil, false
	}
	return res, true
}

func (d Descriptor) reportError(emitter *events.Emitter, sanitized map[string]any, err error, traceback string) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("tool error event emission panicked", "tool", d.Name, "recover", r)
			}
		}()
		emitter.ToolError(d.Name, sanitized, err, traceback)
	}()
	if d.ErrorStatusFormat != "" {
		withErr := make(map[string]any, len(sanitized)+1)
		for k, v := range sanitized {
			withErr[k] = v
		}
		withErr["error"] = err.Error()
		emitter.AgentStatus(formatStatus(d.ErrorStatusFormat, withErr))
	}
}

// formatStatus substitutes "{key}" placeholders in template from args,
// mirroring the original str.format(**kwargs)-style status templates.
func formatStatus(template string, args map[string]any) string {
	out := template
	for k, v := range args {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}
