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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaFromLegacyParamsInfersTypeAndRequired(t *testing.T) {
	s := SchemaFromLegacyParams([]LegacyParam{
		{Name: "enabled", Description: "A boolean flag, required."},
		{Name: "count", Description: "An integer count."},
		{Name: "name", Description: "A plain string."},
		{Name: "tags", Description: "A list of tags."},
	})

	assert.Equal(t, "boolean", s.Properties["enabled"].Type)
	assert.Equal(t, "number", s.Properties["count"].Type)
	assert.Equal(t, "string", s.Properties["name"].Type)
	assert.Equal(t, "array", s.Properties["tags"].Type)
	assert.True(t, s.IsRequired("enabled"))
	assert.False(t, s.IsRequired("count"))
}

func TestInferTypePrefersStringOverNumberOnAmbiguousDescription(t *testing.T) {
	assert.Equal(t, "string", inferType("a string of integers"))
	assert.Equal(t, "string", inferType("string representation of a number"))
}

func TestInferTypeLeavesTypeUnsetWhenNothingMatches(t *testing.T) {
	assert.Equal(t, "", inferType("the widget to operate on"))
}

func TestSchemaRemoveParameterAlsoDropsFromRequired(t *testing.T) {
	s := Schema{
		Type:       "object",
		Properties: map[string]Property{"a": {Type: "string"}, "b": {Type: "string"}},
		Required:   []string{"a", "b"},
	}

	out := s.RemoveParameter("a")

	_, hasA := out.Properties["a"]
	assert.False(t, hasA)
	assert.False(t, out.IsRequired("a"))
	assert.True(t, out.IsRequired("b"))
	// original must be untouched
	assert.True(t, s.IsRequired("a"))
}

func TestSchemaWithDescriptionLeavesTypeAndRequiredAlone(t *testing.T) {
	s := Schema{
		Type:       "object",
		Properties: map[string]Property{"a": {Type: "boolean", Description: "old"}},
		Required:   []string{"a"},
	}

	out := s.WithDescription("a", "new description")

	assert.Equal(t, "new description", out.Properties["a"].Description)
	assert.Equal(t, "boolean", out.Properties["a"].Type)
	assert.True(t, out.IsRequired("a"))
}
