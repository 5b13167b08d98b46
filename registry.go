package hxview

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds units compiled into the binary, keyed by the path the
// Locator resolves for them. With templ, that is the path of the .templ
// source next to the generated code:
//
//	reg := hxview.NewRegistry()
//	reg.AddTempl("app/views/home.templ", views.Home)
//	reg.AddTempl("app/layouts/main.templ", layouts.Main)
//
// The .templ files stay in the root's file system so the Locator can find
// them; the Registry supplies what to run.
type Registry struct {
	mu    sync.RWMutex
	units map[string]Unit
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

// Add registers a unit under path.
// Panics if path is already registered.
func (reg *Registry) Add(path string, unit Unit) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.units[path]; exists {
		panic(fmt.Sprintf("hxview: unit collision for %q", path))
	}
	reg.units[path] = unit
}

// AddTempl registers a templ template under path.
func (reg *Registry) AddTempl(path string, fn TemplFunc) {
	reg.Add(path, fn)
}

// Paths returns the registered paths, sorted.
func (reg *Registry) Paths() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	paths := make([]string, 0, len(reg.units))
	for p := range reg.units {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Load implements Loader.
func (reg *Registry) Load(_ context.Context, path string) (Unit, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	u, ok := reg.units[path]
	if !ok {
		return nil, ErrUnitNotFound
	}
	return u, nil
}
