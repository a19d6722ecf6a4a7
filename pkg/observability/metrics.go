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

package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics collection for the agent loop.
type Metrics struct {
	registry *prometheus.Registry

	loopIterations  *prometheus.CounterVec
	loopDuration    *prometheus.HistogramVec
	parseFailures   *prometheus.CounterVec
	parseRetries    *prometheus.CounterVec
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	toolErrors      *prometheus.CounterVec
	llmCalls        *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	relevanceFilterCalls *prometheus.CounterVec
	relevanceFilterKept  *prometheus.HistogramVec
}

var (
	globalMetrics     *Metrics
	globalMetricsOnce sync.Once
)

// NewMetrics builds a fresh Prometheus registry with all agentcore series
// registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		loopIterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_loop_iterations_total",
			Help: "Number of agent loop iterations executed.",
		}, []string{"variant"}),
		loopDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "agentcore_loop_session_duration_seconds",
			Help: "Duration of a complete agent loop session.",
		}, []string{"variant", "outcome"}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_parse_failures_total",
			Help: "Number of language parse failures observed.",
		}, []string{"variant"}),
		parseRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_parse_retries_total",
			Help: "Number of adapt+retry cycles performed after a parse failure.",
		}, []string{"variant"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_tool_calls_total",
			Help: "Number of tool invocations dispatched.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "agentcore_tool_call_duration_seconds",
			Help: "Duration of tool invocations.",
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_tool_errors_total",
			Help: "Number of tool invocations that raised an error.",
		}, []string{"tool"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_llm_calls_total",
			Help: "Number of LLM endpoint calls made.",
		}, []string{"purpose"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "agentcore_llm_call_duration_seconds",
			Help: "Duration of LLM endpoint calls.",
		}, []string{"purpose"}),
		relevanceFilterCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_relevance_filter_calls_total",
			Help: "Number of relevance filter invocations, by outcome.",
		}, []string{"outcome"}),
		relevanceFilterKept: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentcore_relevance_filter_tools_kept",
			Help:    "Number of tools kept by a successful relevance filter pass.",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 15, 25},
		}, []string{}),
	}

	reg.MustRegister(
		m.loopIterations, m.loopDuration, m.parseFailures, m.parseRetries,
		m.toolCalls, m.toolDuration, m.toolErrors, m.llmCalls, m.llmDuration,
		m.relevanceFilterCalls, m.relevanceFilterKept,
	)

	return m
}

// GlobalMetrics returns (and lazily initializes) the process-wide Metrics.
func GlobalMetrics() *Metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetrics()
	})
	return globalMetrics
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordIteration(variant string) {
	m.loopIterations.WithLabelValues(variant).Inc()
}

func (m *Metrics) RecordSession(variant, outcome string, d time.Duration) {
	m.loopDuration.WithLabelValues(variant, outcome).Observe(d.Seconds())
}

func (m *Metrics) RecordParseFailure(variant string) {
	m.parseFailures.WithLabelValues(variant).Inc()
}

func (m *Metrics) RecordParseRetry(variant string) {
	m.parseRetries.WithLabelValues(variant).Inc()
}

func (m *Metrics) RecordToolCall(tool, outcome string, d time.Duration, errored bool) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
	if errored {
		m.toolErrors.WithLabelValues(tool).Inc()
	}
}

func (m *Metrics) RecordLLMCall(purpose string, d time.Duration) {
	m.llmCalls.WithLabelValues(purpose).Inc()
	m.llmDuration.WithLabelValues(purpose).Observe(d.Seconds())
}

func (m *Metrics) RecordRelevanceFilter(outcome string, kept int) {
	m.relevanceFilterCalls.WithLabelValues(outcome).Inc()
	if outcome == "filtered" {
		m.relevanceFilterKept.WithLabelValues().Observe(float64(kept))
	}
}
