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

import "strings"

// Schema is a minimal JSON-schema object describing a tool's parameters.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one parameter within a Schema.
type Property struct {
	Type        string         `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
	Enum        []string       `json:"enum,omitempty"`
	Items       map[string]any `json:"items,omitempty"`
	Default     any            `json:"default,omitempty"`
}

// Clone returns a deep copy so that per-binding schema rewrites (see
// pkg/remoteop) never mutate a shared Schema value.
func (s Schema) Clone() Schema {
	out := Schema{Type: s.Type}
	if s.Properties != nil {
		out.Properties = make(map[string]Property, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}

// IsRequired reports whether name appears in the Required list.
func (s Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// WithoutRequired returns a copy of names with target removed.
func withoutRequired(names []string, target string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// RemoveParameter strips a parameter from the schema entirely, including
// from the Required list. Used to implement manual-binding suppression
// (see pkg/remoteop).
func (s Schema) RemoveParameter(name string) Schema {
	out := s.Clone()
	delete(out.Properties, name)
	out.Required = withoutRequired(out.Required, name)
	return out
}

// WithDescription returns a copy of the schema with the named property's
// description replaced, leaving type and required-ness untouched.
func (s Schema) WithDescription(name, description string) Schema {
	out := s.Clone()
	if prop, ok := out.Properties[name]; ok {
		prop.Description = description
		out.Properties[name] = prop
	}
	return out
}

// inferType guesses a JSON-schema type from a legacy parameter's free-text
// description, the way the original flat "params" list was interpreted
// before structured schemas existed. Substring checks run in the same
// order as the original: boolean, then string, then number, then array,
// then object — so a description like "a string of integers" infers
// string, not number. A description matching none of them gets no type
// at all, matching the original's behavior of leaving the type unset
// rather than defaulting to string.
func inferType(description string) string {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, "boolean", "bool"):
		return "boolean"
	case containsAny(d, "string", "str"):
		return "string"
	case containsAny(d, "number", "int", "integer", "float"):
		return "number"
	case containsAny(d, "array", "list"):
		return "array"
	case containsAny(d, "object", "dict"):
		return "object"
	default:
		return ""
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// LegacyParam is one entry of an Operation Descriptor's flat "params" list
// (the pre-schema representation).
type LegacyParam struct {
	Name        string
	Description string
}

// SchemaFromLegacyParams builds a Schema from a flat parameter list,
// inferring each parameter's type from its description and marking it
// required iff the description literally contains the word "required".
func SchemaFromLegacyParams(params []LegacyParam) Schema {
	out := Schema{Type: "object", Properties: map[string]Property{}}
	for _, p := range params {
		out.Properties[p.Name] = Property{
			Type:        inferType(p.Description),
			Description: p.Description,
		}
		if strings.Contains(strings.ToLower(p.Description), "required") {
			out.Required = append(out.Required, p.Name)
		}
	}
	return out
}
