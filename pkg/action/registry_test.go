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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor(name string, tags ...string) Descriptor {
	return NewDescriptor(name, "test tool "+name, Schema{Type: "object"}, func(actx *Context, args map[string]any) (any, error) {
		return "ok:" + name, nil
	}).WithTags(tags...)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	catalog := DefaultCatalog()
	r := NewRegistry(catalog)

	r.Register(testDescriptor("search"))

	d, err := r.Get("search")
	require.NoError(t, err)
	assert.Equal(t, "search", d.Name)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistryByNameFromCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	r := NewRegistry(catalog)

	ok := r.RegisterByName(TerminateName)
	assert.True(t, ok)

	ok = r.RegisterByName("does-not-exist")
	assert.False(t, ok)
}

func TestRegistryRegisterTerminateFailsWithoutCatalogEntry(t *testing.T) {
	catalog := NewCatalog() // empty, no terminate registered
	r := NewRegistry(catalog)

	err := r.RegisterTerminate()
	assert.ErrorIs(t, err, ErrMissingTerminator)
}

func TestNewRegistryFromTagsSelectsByNameOrTag(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Register(testDescriptor("weather", "external", "readonly")))
	require.NoError(t, catalog.Register(testDescriptor("search", "external")))
	require.NoError(t, catalog.Register(testDescriptor("deploy", "privileged")))

	r := NewRegistryFromTags(catalog, []string{"external"}, []string{"deploy"})

	names := r.Names()
	assert.Contains(t, names, "weather")
	assert.Contains(t, names, "search")
	assert.Contains(t, names, "deploy")
	assert.NotContains(t, names, TerminateName, "terminator is captured but not auto-selected by tag/name rules")
}

func TestReplaceWithAlwaysKeepsTerminator(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Register(testDescriptor("search")))
	require.NoError(t, catalog.Register(testDescriptor("weather")))

	r := NewRegistry(catalog)
	r.Register(catalogDescriptor(t, catalog, TerminateName))
	r.Register(catalogDescriptor(t, catalog, "search"))
	r.Register(catalogDescriptor(t, catalog, "weather"))

	r.ReplaceWith([]string{"weather"})

	names := r.Names()
	assert.Contains(t, names, "weather")
	assert.Contains(t, names, TerminateName)
	assert.NotContains(t, names, "search")
	assert.True(t, r.HasTerminator())
}

func catalogDescriptor(t *testing.T, catalog *Catalog, name string) Descriptor {
	t.Helper()
	d, ok := catalog.Get(name)
	require.True(t, ok)
	return d
}

func TestCatalogRegisterRejectsDuplicates(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.Register(testDescriptor("search")))

	err := catalog.Register(testDescriptor("search"))
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSnapshotIsolationAcrossReplace(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Register(testDescriptor("search")))

	r := NewRegistry(catalog)
	r.RegisterByName("search")

	before := r.List()
	r.ReplaceWith(nil)
	after := r.List()

	assert.Len(t, before, 1)
	assert.Len(t, after, 0, "ReplaceWith with no names and no terminator leaves an empty snapshot")
}

func TestListIsSortedByNameAcrossCalls(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Register(testDescriptor("zebra")))
	require.NoError(t, catalog.Register(testDescriptor("apple")))
	require.NoError(t, catalog.Register(testDescriptor("mango")))

	r := NewRegistry(catalog)
	r.RegisterByName("zebra")
	r.RegisterByName("apple")
	r.RegisterByName("mango")
	require.NoError(t, r.RegisterTerminate())

	var firstNames []string
	for _, d := range r.List() {
		firstNames = append(firstNames, d.Name)
	}

	for i := 0; i < 5; i++ {
		var names []string
		for _, d := range r.List() {
			names = append(names, d.Name)
		}
		assert.Equal(t, firstNames, names, "List order must be stable across repeated calls")
	}

	assert.Equal(t, []string{"apple", "mango", TerminateName, "zebra"}, firstNames)
}

func TestTerminateDescriptorIsTerminal(t *testing.T) {
	catalog := DefaultCatalog()
	d, ok := catalog.Get(TerminateName)
	require.True(t, ok)
	assert.True(t, d.Terminal)

	result := d.Invoke(&Context{}, map[string]any{"message": "done"})
	out, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "done", out["message"])
}

var errBoom = errors.New("boom")
