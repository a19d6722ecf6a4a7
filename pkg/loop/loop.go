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

// Package loop implements the Agent Loop: the single-threaded, cooperative
// think -> act -> observe pipeline that drives one session from its
// first prompt to the terminal tool's return value.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/language"
	"github.com/kadirpekel/agentcore/pkg/llmclient"
	"github.com/kadirpekel/agentcore/pkg/memory"
	"github.com/kadirpekel/agentcore/pkg/observability"
	"github.com/kadirpekel/agentcore/pkg/promptasm"
)

const (
	defaultMaxParseRetries = 3
	defaultMaxIterations   = 25
)

// Loop owns the per-session pipeline state: memory, registry, the active
// language variant, goals, and the LLM client. One Loop serves exactly
// one session; a process runs many Loops concurrently, each making at
// most one outstanding LLM call and one outstanding tool call at a time.
type Loop struct {
	mem       *memory.Memory
	registry  *action.Registry
	lang      language.Language
	assembler *promptasm.Assembler
	llm       *llmclient.Client
	goals     []goal.Goal

	maxParseRetries int
	maxIterations   int

	metrics *observability.Metrics
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxParseRetries overrides the default retry budget of 3 for
// resolving a parseable, known tool call per turn.
func WithMaxParseRetries(n int) Option {
	return func(l *Loop) { l.maxParseRetries = n }
}

// WithMaxIterations overrides the default upper bound of 25 loop
// iterations. A non-positive value disables the bound.
func WithMaxIterations(n int) Option {
	return func(l *Loop) { l.maxIterations = n }
}

// WithMetrics attaches a Metrics collector for iteration/parse-failure
// observation.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// New builds a Loop bound to one session's memory, registry, language
// variant, goals, and LLM client.
func New(mem *memory.Memory, registry *action.Registry, lang language.Language, llm *llmclient.Client, goals []goal.Goal, opts ...Option) *Loop {
	l := &Loop{
		mem:             mem,
		registry:        registry,
		lang:            lang,
		assembler:       promptasm.New(lang),
		llm:             llm,
		goals:           goals,
		maxParseRetries: defaultMaxParseRetries,
		maxIterations:   defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run drives the session to completion: construct, call, parse,
// dispatch, record, repeat, until a terminal tool runs, the iteration
// bound is hit, or actx reports cancellation.
func (l *Loop) Run(ctx context.Context, actx *action.Context) (Result, error) {
	iteration := 0
	for {
		iteration++

		if l.maxIterations > 0 && iteration > l.maxIterations {
			value := l.synthesizeTerminate(actx, fmt.Sprintf("iteration limit of %d reached", l.maxIterations), "")
			return Result{Value: value, Outcome: OutcomeIterationLimit, Iterations: iteration - 1}, nil
		}
		if actx.Cancelled() {
			value := l.synthesizeTerminate(actx, "session cancelled", "")
			return Result{Value: value, Outcome: OutcomeCancelled, Iterations: iteration - 1}, nil
		}

		prompt := l.assembler.Assemble(l.goals, l.mem, l.registry)
		reply, err := l.callLLM(ctx, prompt)
		if err != nil {
			return Result{}, fmt.Errorf("loop: llm call failed: %w", err)
		}

		act, descriptor, resolvedErr := l.resolveAction(ctx, prompt, reply)
		if resolvedErr != nil {
			l.mem.AppendAssistant(fmt.Sprintf("failed to produce a valid, known tool call after retries: %v", resolvedErr))
			value := l.synthesizeTerminate(actx, "failed to produce a valid action", resolvedErr.Error())
			return Result{Value: value, Outcome: OutcomeParseFailureExhausted, Iterations: iteration}, nil
		}

		if act.Error != "" {
			l.mem.AppendSystem(fmt.Sprintf("early termination requested: %s", act.Error))
		}

		if actx.Cancelled() {
			value := l.synthesizeTerminate(actx, "session cancelled", "")
			return Result{Value: value, Outcome: OutcomeCancelled, Iterations: iteration}, nil
		}

		result := descriptor.Invoke(actx, act.Args)
		l.mem.AppendAssistantIntent(act.Tool, act.Args)
		l.mem.AppendEnvironment(result)

		if l.metrics != nil {
			l.metrics.RecordIteration(variantLabel(l.lang))
		}

		if descriptor.Terminal {
			return Result{Value: result, Outcome: OutcomeTerminated, Iterations: iteration}, nil
		}
	}
}

// resolveAction parses reply and looks up its tool, retrying through
// language.Adapt for both a parse failure and a dispatch-side unknown
// tool, sharing a single retry budget between the two cases.
func (l *Loop) resolveAction(ctx context.Context, prompt language.Prompt, reply string) (language.Action, action.Descriptor, error) {
	retriesLeft := l.maxParseRetries

	for {
		act, perr := l.lang.Parse(reply)
		if perr == nil {
			descriptor, derr := l.registry.Get(act.Tool)
			if derr == nil {
				return act, descriptor, nil
			}
			perr = fmt.Errorf("tool %q: %w", act.Tool, derr)
		} else if l.metrics != nil {
			l.metrics.RecordParseFailure(variantLabel(l.lang))
		}

		if retriesLeft <= 0 {
			return language.Action{}, action.Descriptor{}, perr
		}

		if l.metrics != nil {
			l.metrics.RecordParseRetry(variantLabel(l.lang))
		}

		prompt = l.lang.Adapt(prompt, reply, perr, retriesLeft)
		retriesLeft--

		newReply, err := l.callLLM(ctx, prompt)
		if err != nil {
			return language.Action{}, action.Descriptor{}, err
		}
		reply = newReply
	}
}

func (l *Loop) callLLM(ctx context.Context, prompt language.Prompt) (string, error) {
	reply, err := l.llm.Call(ctx, "loop", language.ToLLMRequest(prompt))
	if err != nil {
		return "", err
	}
	l.mem.AppendPrompt(map[string]any{
		"messages":  prompt.Messages,
		"tools":     prompt.Tools,
		"sent_at":   time.Now().UTC().Format(time.RFC3339Nano),
		"reply_len": len(reply),
	})
	return reply, nil
}

// synthesizeTerminate builds and invokes a terminate call directly,
// bypassing the LLM, for loop-internal endings (iteration limit,
// cancellation, exhausted retries) rather than model-driven ones.
func (l *Loop) synthesizeTerminate(actx *action.Context, message, errNote string) any {
	descriptor, err := l.registry.Get(action.TerminateName)
	if err != nil {
		return map[string]any{"message": message, "error": errNote}
	}
	args := map[string]any{"message": message}
	if errNote != "" {
		args["error"] = errNote
	}
	result := descriptor.Invoke(actx, args)
	l.mem.AppendAssistantIntent(action.TerminateName, args)
	l.mem.AppendEnvironment(result)
	return result
}

func variantLabel(lang language.Language) string {
	switch lang.(type) {
	case *language.Natural:
		return "natural"
	case *language.JSONFenced:
		return "json_fenced"
	case *language.NativeTool:
		return "native_tool_calling"
	default:
		return "unknown"
	}
}
