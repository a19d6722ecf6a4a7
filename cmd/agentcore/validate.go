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
	"fmt"

	"github.com/kadirpekel/agentcore/pkg/config"
)

// ValidateCmd checks a configuration file for internal consistency
// without starting a session.
type ValidateCmd struct {
	Config string `short:"c" help:"Path to config file." type:"path" required:""`
}

func (c *ValidateCmd) Run() error {
	cfg, err := config.LoadFile(context.Background(), c.Config)
	if err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}

	fmt.Printf("config valid: language=%s llm_endpoint=%s max_iterations=%d\n",
		cfg.Language.Variant, cfg.LLM.EndpointURL, cfg.Loop.MaxIterations)
	return nil
}
