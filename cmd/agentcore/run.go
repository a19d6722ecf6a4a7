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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/events"
	"github.com/kadirpekel/agentcore/pkg/goal"
	"github.com/kadirpekel/agentcore/pkg/language"
	"github.com/kadirpekel/agentcore/pkg/llmclient"
	"github.com/kadirpekel/agentcore/pkg/logger"
	"github.com/kadirpekel/agentcore/pkg/loop"
	"github.com/kadirpekel/agentcore/pkg/memory"
	"github.com/kadirpekel/agentcore/pkg/observability"
	"github.com/kadirpekel/agentcore/pkg/relevance"
	"github.com/kadirpekel/agentcore/pkg/remoteop"
)

// RunCmd drives exactly one agent session from its first prompt to the
// terminal tool's return value.
type RunCmd struct {
	Config  string `short:"c" help:"Path to config file." type:"path" required:""`
	Message string `arg:"" help:"The user's opening message for this session."`

	SessionID string `help:"Session ID. Random UUID if omitted."`
	AgentID   string `help:"Agent ID. Random UUID if omitted."`
	Goal      string `help:"Optional single goal description."`
}

func (c *RunCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Warn("shutting down, cancelling session")
		cancel()
	}()

	cfg, err := config.LoadFile(ctx, c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{Level: cfg.Logger.Level, JSON: cfg.Logger.JSON})
	log.Info("configuration loaded", "config", c.Config)

	tp, err := observability.InitGlobalTracer(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	if shutdowner, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
		defer shutdowner.Shutdown(context.Background())
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
		go serveMetrics(metrics)
	}

	llm := llmclient.New(cfg.LLM.EndpointURL, cfg.LLM.Timeout, llmclient.WithMetrics(metrics))

	sessionID := c.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	agentID := c.AgentID
	if agentID == "" {
		agentID = uuid.New().String()
	}
	messageID := uuid.New().String()

	emitter := events.New(func(name string, payload map[string]any) {
		log.Debug("event", "name", name, "payload", payload)
	})
	actx := action.NewContext("cli-user", "", sessionID, agentID, messageID, emitter)

	catalog := action.DefaultCatalog()
	registry := action.NewRegistry(catalog)
	if err := registry.RegisterTerminate(); err != nil {
		return fmt.Errorf("register terminator: %w", err)
	}
	for _, name := range catalog.List() {
		registry.RegisterByName(name.Name)
	}

	if cfg.RemoteOp.BaseURL != "" {
		bridge := remoteop.New(cfg.RemoteOp.BaseURL, cfg.RemoteOp.Timeout)
		ops, err := bridge.ListRemoteOps(ctx, actx)
		if err != nil {
			log.Warn("failed to enumerate remote operations", "error", err)
		} else {
			for _, op := range ops {
				registry.Register(bridge.Compile(op))
			}
			log.Info("remote operations registered", "count", len(ops))
		}
	}

	lang, err := buildLanguage(cfg.Language)
	if err != nil {
		return err
	}

	var filter *relevance.Filter
	if cfg.RelevanceFilter.Enabled {
		filter = relevance.New(llm, relevance.WithMaxTools(cfg.RelevanceFilter.MaxTools), relevance.WithMetrics(metrics))
	}

	goals := []goal.Goal{}
	if c.Goal != "" {
		goals = append(goals, goal.Goal{Name: "primary", Description: c.Goal, Priority: 1})
	}

	mem := memory.New()
	mem.AppendUser(c.Message)

	if filter != nil {
		nonTerminator := 0
		for _, d := range registry.List() {
			if d.Name != action.TerminateName {
				nonTerminator++
			}
		}
		if nonTerminator >= cfg.RelevanceFilter.MinTools {
			filter.FilterRegistry(ctx, registry, c.Message, goals)
		}
	}

	l := loop.New(mem, registry, lang, llm, goals,
		loop.WithMaxIterations(cfg.Loop.MaxIterations),
		loop.WithMaxParseRetries(cfg.Loop.ParseRetryLimit),
		loop.WithMetrics(metrics),
	)

	sessionStart := time.Now()
	result, err := l.Run(ctx, actx)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	if metrics != nil {
		metrics.RecordSession(cfg.Language.Variant, string(result.Outcome), time.Since(sessionStart))
	}

	out, err := json.MarshalIndent(map[string]any{
		"session_id": sessionID,
		"agent_id":   agentID,
		"outcome":    result.Outcome,
		"iterations": result.Iterations,
		"result":     result.Value,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// buildLanguage selects the Agent Language variant named by cfg.Variant.
func buildLanguage(cfg config.LanguageConfig) (language.Language, error) {
	switch cfg.Variant {
	case "natural":
		return language.NewNatural(), nil
	case "json_fenced":
		return language.NewJSONFenced(cfg.TerseParseFeedback), nil
	case "native_tool_calling":
		return language.NewNativeTool(cfg.AllowNonToolOutput), nil
	default:
		return nil, fmt.Errorf("unknown language variant %q", cfg.Variant)
	}
}

// serveMetrics exposes the Prometheus handler on :9090 for as long as the
// process runs; a bind failure is logged, not fatal, since metrics are an
// optional ambient concern.
func serveMetrics(m *observability.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if err := http.ListenAndServe(":9090", mux); err != nil {
		slog.Warn("metrics server stopped", "error", err)
	}
}
