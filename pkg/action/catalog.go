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

import "sync"

// Catalog is the process-wide, read-mostly mapping of built-in tool
// descriptors. It is written only at initialization (decorator-style
// registration at load time); after load it is effectively immutable, so
// a plain RWMutex is sufficient — there is no hot-path contention to
// justify a lock-free snapshot swap here, unlike per-session Registry.
type Catalog struct {
	mu    sync.RWMutex
	byName map[string]Descriptor
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]Descriptor)}
}

// Register adds d to the catalog. Intended to be called at process
// start-up (e.g. from an init-style registration function); returns
// ErrDuplicateName if the name already exists, since the built-in set is
// meant to be registered exactly once per process.
func (c *Catalog) Register(d Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[d.Name]; exists {
		return ErrDuplicateName
	}
	c.byName[d.Name] = d
	return nil
}

// MustRegister is Register but panics on error; meant for package-level
// var-init blocks where a duplicate name is a programmer error.
func (c *Catalog) MustRegister(d Descriptor) {
	if err := c.Register(d); err != nil {
		panic(err)
	}
}

// Get returns the descriptor registered under name.
func (c *Catalog) Get(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// List returns every descriptor in the catalog. Order is unspecified.
func (c *Catalog) List() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, 0, len(c.byName))
	for _, d := range c.byName {
		out = append(out, d)
	}
	return out
}

// Count returns the number of registered descriptors.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}
