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

package remoteop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kadirpekel/agentcore/pkg/action"
	"github.com/kadirpekel/agentcore/pkg/httpclient"
)

const (
	defaultEnumeratePath = "/ops/get"
	defaultExecutePath   = "/assistant-api/execute-custom-auto"
	maxUnwrapDepth       = 3
)

// Bridge fetches remote operation descriptors for the current principal
// and compiles each into an action.Descriptor whose callable posts a JSON
// body to that operation's execution endpoint.
type Bridge struct {
	client       *httpclient.Client
	baseURL      string
	enumeratePath string
	executePath   string
	timeout       time.Duration
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithEnumeratePath overrides the default "/ops/get" enumeration path.
func WithEnumeratePath(path string) Option {
	return func(b *Bridge) { b.enumeratePath = path }
}

// WithExecutePath overrides the default execute-operation path.
func WithExecutePath(path string) Option {
	return func(b *Bridge) { b.executePath = path }
}

// New builds a Bridge that talks to baseURL, with the Remote-Op Bridge's
// default 30s per-call deadline.
func New(baseURL string, timeout time.Duration, opts ...Option) *Bridge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	b := &Bridge{
		client:        httpclient.New(),
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		enumeratePath: defaultEnumeratePath,
		executePath:   defaultExecutePath,
		timeout:       timeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ListRemoteOps enumerates the operations visible to the principal
// carried by actx.
func (b *Bridge) ListRemoteOps(ctx context.Context, actx *action.Context) ([]OperationDescriptor, error) {
	body := map[string]any{"data": map[string]any{"tag": "default"}}

	var resp struct {
		Data []OperationDescriptor `json:"data"`
	}
	if err := b.postJSON(ctx, actx.BearerToken, b.enumeratePath, body, &resp); err != nil {
		return nil, fmt.Errorf("%w: list remote ops: %v", ErrTransport, err)
	}
	return resp.Data, nil
}

// Compile turns one OperationDescriptor into an invokable action.Descriptor
// per the bridge's compilation rules: effective name/description
// resolution, schema precedence, and per-parameter binding application.
func (b *Bridge) Compile(op OperationDescriptor) action.Descriptor {
	schema := op.EffectiveSchema()

	for param, binding := range op.Bindings {
		if binding.Mode == BindingModeAI {
			if desc, ok := binding.Value.(string); ok && desc != "" {
				schema = schema.WithDescription(param, desc)
			}
		}
	}
	for param, binding := range op.Bindings {
		if binding.Mode == BindingModeManual {
			schema = schema.RemoveParameter(param)
		}
	}

	bindings := op.Bindings
	opID := op.ID

	fn := func(actx *action.Context, args map[string]any) (any, error) {
		merged := make(map[string]any, len(args)+len(bindings))
		for k, v := range args {
			merged[k] = v
		}
		for param, binding := range bindings {
			if binding.Mode != BindingModeManual {
				continue
			}
			merged[param] = coerceBoolLiteral(binding.Value)
		}

		return b.invoke(actx, opID, merged)
	}

	return action.NewDescriptor(op.EffectiveName(), op.EffectiveDescription(), schema, fn).WithTags(op.Tags...)
}

// coerceBoolLiteral turns the string literals "true"/"false" (any case)
// into a bool, leaving every other value untouched.
func coerceBoolLiteral(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	default:
		return v
	}
}

// invoke posts the merged args to the execute-operation path and unwraps
// the response.
func (b *Bridge) invoke(actx *action.Context, opID string, payload map[string]any) (any, error) {
	body := map[string]any{
		"data": map[string]any{
			"action":       map[string]any{"name": opID, "payload": payload},
			"conversation": actx.SessionID,
			"message":      actx.MessageID,
			"assistant":    actx.AgentID,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	var resp struct {
		Success bool `json:"success"`
		Data    any  `json:"data"`
		Message any  `json:"message"`
	}
	if err := b.postJSON(ctx, actx.BearerToken, b.executePath, body, &resp); err != nil {
		return map[string]any{"success": false, "message": err.Error()}, nil
	}

	if !resp.Success {
		return map[string]any{"success": resp.Success, "message": resp.Message}, nil
	}

	return unwrap(resp.Data, maxUnwrapDepth), nil
}

// unwrap peels up to depth nested "result"/"data" envelopes and returns
// the innermost value.
func unwrap(v any, depth int) any {
	for i := 0; i < depth; i++ {
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		if inner, ok := m["result"]; ok {
			v = inner
			continue
		}
		if inner, ok := m["data"]; ok {
			v = inner
			continue
		}
		break
	}
	return v
}

func (b *Bridge) postJSON(ctx context.Context, bearerToken, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
