package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface that all patch libraries implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the patches known to a single application instance.
type Registry struct {
	patches map[string]*Patch
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{patches: make(map[string]*Patch)}
}

// RegisterPatch adds p under p.Path.
func (r *Registry) RegisterPatch(p *Patch) {
	if p == nil || p.Path == "" {
		panic("registry: patch without a path")
	}
	if _, exists := r.patches[p.Path]; exists {
		panic(fmt.Sprintf("patch '%s' already registered", p.Path))
	}
	slog.Debug("Registering patch.", "path", p.Path)
	r.patches[p.Path] = p
}

// Patch returns the patch registered under path.
func (r *Registry) Patch(path string) (*Patch, bool) {
	p, ok := r.patches[path]
	return p, ok
}

// Paths returns every registered patch path in lexical order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.patches))
	for path := range r.patches {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of registered patches.
func (r *Registry) Len() int {
	return len(r.patches)
}
