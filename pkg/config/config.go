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

package config

import (
	"fmt"
	"time"

	"github.com/kadirpekel/agentcore/pkg/observability"
)

// LoggerConfig configures the process-wide structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LLMConfig configures the opaque LLM HTTP endpoint the loop talks to.
type LLMConfig struct {
	EndpointURL string        `yaml:"endpoint_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// RemoteOpConfig configures the Remote-Op Bridge's outbound HTTP surface.
type RemoteOpConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// LanguageConfig selects and configures the Agent Language variant.
type LanguageConfig struct {
	// Variant is one of "natural", "json_fenced", "native_tool_calling".
	Variant string `yaml:"variant"`

	// TerseParseFeedback controls whether the JSON-fenced variant's
	// post-parse-failure feedback message includes only its first
	// sentence (true) or all four (false). Default true.
	TerseParseFeedback bool `yaml:"terse_parse_feedback"`

	// AllowNonToolOutput controls the native tool-calling variant's
	// handling of a reply that doesn't JSON-decode to a tool call: when
	// true (the default) it is treated as a plain terminate message;
	// when false only the EXIT_AGENT_LOOP sentinel is tolerated.
	AllowNonToolOutput bool `yaml:"allow_non_tool_output"`
}

// RelevanceFilterConfig configures the optional tool relevance filter.
type RelevanceFilterConfig struct {
	Enabled bool `yaml:"enabled"`

	// MinTools is the number of non-terminator tools a registry must
	// carry before the filter bothers running at all.
	MinTools int `yaml:"min_tools_to_trigger"`

	// MaxTools is the maximum number of non-terminator tools the filter's
	// prompt asks the LLM to select; the reply is not truncated to it.
	MaxTools int `yaml:"max_tools"`
}

// LoopConfig bounds a single agent loop session.
type LoopConfig struct {
	MaxIterations   int `yaml:"max_iterations"`
	ParseRetryLimit int `yaml:"parse_retry_limit"`
}

// Config is the top-level agentcore runtime configuration.
type Config struct {
	Logger          LoggerConfig                `yaml:"logger"`
	Tracer          observability.TracerConfig   `yaml:"tracer"`
	MetricsEnabled  bool                         `yaml:"metrics_enabled"`
	LLM             LLMConfig                    `yaml:"llm"`
	RemoteOp        RemoteOpConfig               `yaml:"remote_op"`
	Language        LanguageConfig               `yaml:"language"`
	RelevanceFilter RelevanceFilterConfig        `yaml:"relevance_filter"`
	Loop            LoopConfig                   `yaml:"loop"`
}

// DefaultConfig returns a Config pre-populated with defaults that must
// survive even when the corresponding YAML key is absent, such as booleans
// whose zero value (false) is not the default. Decode this struct, rather
// than a bare &Config{}, so that an absent key leaves the default standing
// while a present key still overrides it.
func DefaultConfig() *Config {
	return &Config{
		Language: LanguageConfig{
			TerseParseFeedback: true,
			AllowNonToolOutput: true,
		},
	}
}

// SetDefaults fills in zero-valued fields with production defaults.
func (c *Config) SetDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Tracer.ServiceName == "" {
		c.Tracer.ServiceName = observability.DefaultServiceName
	}
	if c.Tracer.SamplingRate <= 0 {
		c.Tracer.SamplingRate = 1.0
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.LLM.MaxRetries <= 0 {
		c.LLM.MaxRetries = 5
	}
	if c.RemoteOp.Timeout <= 0 {
		c.RemoteOp.Timeout = 30 * time.Second
	}
	if c.RemoteOp.MaxRetries <= 0 {
		c.RemoteOp.MaxRetries = 3
	}
	if c.Language.Variant == "" {
		c.Language.Variant = "natural"
	}
	if c.RelevanceFilter.MinTools <= 0 {
		c.RelevanceFilter.MinTools = 5
	}
	if c.RelevanceFilter.MaxTools <= 0 {
		c.RelevanceFilter.MaxTools = 10
	}
	if c.Loop.MaxIterations <= 0 {
		c.Loop.MaxIterations = 25
	}
	if c.Loop.ParseRetryLimit <= 0 {
		c.Loop.ParseRetryLimit = 3
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.Language.Variant {
	case "natural", "json_fenced", "native_tool_calling":
	default:
		return fmt.Errorf("unknown language variant %q", c.Language.Variant)
	}

	if c.LLM.EndpointURL == "" {
		return fmt.Errorf("llm.endpoint_url is required")
	}

	if c.Loop.MaxIterations <= 0 {
		return fmt.Errorf("loop.max_iterations must be positive")
	}

	if c.Tracer.SamplingRate < 0 || c.Tracer.SamplingRate > 1 {
		return fmt.Errorf("tracer.sampling_rate must be within [0,1]")
	}

	return nil
}
