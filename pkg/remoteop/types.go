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

// Package remoteop implements the bridge that turns remote operation
// descriptors, fetched from a principal-scoped enumeration endpoint, into
// invokable action.Descriptor tools whose callable posts a JSON body to
// that operation's execution endpoint.
package remoteop

import "github.com/kadirpekel/agentcore/pkg/action"

// Binding describes how one parameter of an operation is pre-wired.
//
// Mode "ai" rewrites that parameter's schema description, leaving type
// and required-ness untouched. Mode "manual" removes the parameter from
// the exposed schema entirely and injects Value at call time, overriding
// anything the LLM supplied.
type Binding struct {
	Mode  string `json:"mode"`
	Value any    `json:"value"`
}

const (
	BindingModeAI     = "ai"
	BindingModeManual = "manual"
)

// OperationDescriptor is the wire shape fetched from the remote operation
// enumeration endpoint.
type OperationDescriptor struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	CustomName        string             `json:"customName"`
	CustomDescription string             `json:"customDescription"`
	Tags              []string           `json:"tags"`
	Path              string             `json:"path"`

	// Parameter sources, in precedence order: Parameters > Schema >
	// derived from Params (the legacy flat list).
	Parameters *action.Schema      `json:"parameters"`
	Schema     *action.Schema      `json:"schema"`
	Params     []action.LegacyParam `json:"params"`

	Bindings map[string]Binding `json:"bindings"`
}

// EffectiveName returns CustomName if non-empty, else ID.
func (op OperationDescriptor) EffectiveName() string {
	if op.CustomName != "" {
		return op.CustomName
	}
	return op.ID
}

// EffectiveDescription returns CustomDescription if non-empty, else
// Description.
func (op OperationDescriptor) EffectiveDescription() string {
	if op.CustomDescription != "" {
		return op.CustomDescription
	}
	return op.Description
}

// EffectiveSchema resolves the parameter schema by precedence: the first
// non-empty of Parameters, Schema, or one built from the legacy Params
// list. A present-but-empty schema (no Type, no Properties) — which a
// "parameters": {} in the wire JSON decodes to — does not count as
// present; it falls through to the next source, same as the original's
// `parameters or schema or build_schema_from_params(params)`.
func (op OperationDescriptor) EffectiveSchema() action.Schema {
	if op.Parameters != nil && !schemaIsEmpty(*op.Parameters) {
		return *op.Parameters
	}
	if op.Schema != nil && !schemaIsEmpty(*op.Schema) {
		return *op.Schema
	}
	return action.SchemaFromLegacyParams(op.Params)
}

func schemaIsEmpty(s action.Schema) bool {
	return s.Type == "" && len(s.Properties) == 0
}
