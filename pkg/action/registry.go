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

// Package action implements the tool registry and tool descriptor that
// sit between the agent loop and every callable tool, including those
// compiled by the remote-op bridge.
package action

import (
	"sort"
	"sync/atomic"
)

// TerminateName is the mandatory name of the terminal tool. Every
// registry snapshot the loop is allowed to run must contain exactly one
// descriptor with this name and Terminal == true.
const TerminateName = "terminate"

// snapshot is the immutable map a Registry points to. Replacing the
// registry's pointer publishes a new snapshot atomically; existing
// readers keep observing the old one until they re-read the pointer.
type snapshot struct {
	byName map[string]Descriptor
}

// Registry holds the set of currently invokable tools for one session. A
// session's Registry is a copy-on-replace view into the process-wide
// Catalog: registrations publish a new snapshot, they never mutate one
// that a reader might be observing.
type Registry struct {
	current    atomic.Pointer[snapshot]
	terminator *Descriptor // captured even if not itself registered
	catalog    *Catalog

	terminatorRegistered bool // a terminal "terminate" was registered on this Registry
}

// NewRegistry returns an empty Registry backed by catalog for
// RegisterByName/RegisterTerminate lookups.
func NewRegistry(catalog *Catalog) *Registry {
	r := &Registry{catalog: catalog}
	r.current.Store(&snapshot{byName: map[string]Descriptor{}})
	if t, ok := catalog.Get(TerminateName); ok {
		r.terminator = &t
	}
	return r
}

// NewRegistryFromTags scans the catalog once and includes a descriptor
// iff its name is in names, or at least one of its tags intersects tags.
// The terminator is always captured into the side reference, even if
// neither rule selects it.
func NewRegistryFromTags(catalog *Catalog, tags, names []string) *Registry {
	r := NewRegistry(catalog)

	wantNames := toSet(names)
	wantTags := toSet(tags)

	selected := map[string]Descriptor{}
	for _, d := range catalog.List() {
		if wantNames[d.Name] || tagsIntersect(d.Tags, wantTags) {
			selected[d.Name] = d
		}
	}
	r.current.Store(&snapshot{byName: selected})
	return r
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

func tagsIntersect(tags []string, want map[string]bool) bool {
	for _, t := range tags {
		if want[t] {
			return true
		}
	}
	return false
}

// Register inserts or replaces a descriptor by name, publishing a new
// snapshot.
func (r *Registry) Register(d Descriptor) {
	old := r.current.Load()
	next := make(map[string]Descriptor, len(old.byName)+1)
	for k, v := range old.byName {
		next[k] = v
	}
	next[d.Name] = d
	if d.Name == TerminateName && d.Terminal {
		r.terminator = &d
		r.terminatorRegistered = true
	}
	r.current.Store(&snapshot{byName: next})
}

// RegisterByName looks up name in the built-in catalog and registers that
// descriptor. It reports whether the name existed.
func (r *Registry) RegisterByName(name string) bool {
	d, ok := r.catalog.Get(name)
	if !ok {
		return false
	}
	r.Register(d)
	return true
}

// RegisterTerminate guarantees the terminal tool is present in this
// registry's snapshot, pulling it from the catalog if necessary.
func (r *Registry) RegisterTerminate() error {
	if _, ok := r.Get(TerminateName); ok {
		return nil
	}
	d, ok := r.catalog.Get(TerminateName)
	if !ok {
		return ErrMissingTerminator
	}
	r.Register(d)
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, error) {
	snap := r.current.Load()
	d, ok := snap.byName[name]
	if !ok {
		return Descriptor{}, ErrUnknownTool
	}
	return d, nil
}

// List returns every descriptor in the current snapshot, sorted by name.
// Callers such as the Prompt Assembler render this order directly into
// the prompt, so it must be deterministic across calls, not just within
// one — a plain map range would otherwise reorder the tool list on every
// call and break construct's "same inputs, byte-identical prompt"
// guarantee.
func (r *Registry) List() []Descriptor {
	snap := r.current.Load()
	out := make([]Descriptor, 0, len(snap.byName))
	for _, d := range snap.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the set of names in the current snapshot.
func (r *Registry) Names() []string {
	snap := r.current.Load()
	out := make([]string, 0, len(snap.byName))
	for name := range snap.byName {
		out = append(out, name)
	}
	return out
}

// ReplaceWith atomically replaces the snapshot with the subset of the
// current registry identified by names, always unioned with the
// terminator if one was ever registered on this Registry.
func (r *Registry) ReplaceWith(names []string) {
	old := r.current.Load()
	want := toSet(names)

	next := make(map[string]Descriptor, len(want)+1)
	for name, d := range old.byName {
		if want[name] {
			next[name] = d
		}
	}
	if r.terminatorRegistered && r.terminator != nil {
		next[r.terminator.Name] = *r.terminator
	}
	r.current.Store(&snapshot{byName: next})
}

// HasTerminator reports whether the current snapshot contains a
// Terminal == true descriptor named "terminate".
func (r *Registry) HasTerminator() bool {
	d, err := r.Get(TerminateName)
	return err == nil && d.Terminal
}
