package module

import (
	"fmt"
	"sort"
	"sync"
)

// Registry caches modules by resolved path so each file is evaluated once
// per process.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]*Module{}}
}

// Register records a module. Returns an error if the path is already known.
func (r *Registry) Register(mod *Module) error {
	if mod == nil || mod.Path == "" {
		return fmt.Errorf("module: path is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[mod.Path]; exists {
		return fmt.Errorf("module: %s already registered", mod.Path)
	}
	r.modules[mod.Path] = mod
	return nil
}

// Lookup returns the module loaded from path.
func (r *Registry) Lookup(path string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mod, ok := r.modules[path]
	return mod, ok
}

// SetStatus updates the status of a registered module.
func (r *Registry) SetStatus(path string, status Status, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mod, ok := r.modules[path]; ok {
		mod.Status = status
		mod.Err = err
	}
}

// Paths returns a sorted list of registered module paths.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.modules))
	for path := range r.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
