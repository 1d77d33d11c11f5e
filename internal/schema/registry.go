package schema

import (
	"fmt"
	"sort"
	"sync"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
)

// moduleEntry keeps one module's classes in declaration order
type moduleEntry struct {
	order   []string
	classes map[string]models.ClassSchema
}

// Registry is an in-memory Resolver keyed by module and class name
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*moduleEntry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*moduleEntry),
	}
}

// Register adds a class schema. Registering the same module and class twice is an error.
func (r *Registry) Register(s models.ClassSchema) error {
	if s == nil {
		return fmt.Errorf("schema cannot be nil")
	}
	if s.Name() == "" {
		return cerrors.NewSchemaError(s.Module(), "class name cannot be empty", cerrors.SourceLocation{})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.modules[s.Module()]
	if !ok {
		entry = &moduleEntry{classes: make(map[string]models.ClassSchema)}
		r.modules[s.Module()] = entry
	}
	if _, exists := entry.classes[s.Name()]; exists {
		return cerrors.NewSchemaError(s.Module(),
			fmt.Sprintf("class '%s' already registered in module '%s'", s.Name(), s.Module()),
			cerrors.SourceLocation{})
	}

	entry.order = append(entry.order, s.Name())
	entry.classes[s.Name()] = s
	return nil
}

// MustRegister registers schemas and panics on error (for tests and fixtures)
func (r *Registry) MustRegister(schemas ...models.ClassSchema) *Registry {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Merge registers every schema of other into r, in other's declaration order
func (r *Registry) Merge(other *Registry) error {
	for _, module := range other.Modules() {
		for _, name := range other.Classes(module) {
			s, _ := other.ResolveClass(module, name)
			if err := r.Register(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResolveClass implements Resolver
func (r *Registry) ResolveClass(module, name string) (models.ClassSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.modules[module]
	if !ok {
		return nil, cerrors.NewModuleNotFoundError(module, r.moduleNamesLocked())
	}
	s, ok := entry.classes[name]
	if !ok {
		return nil, cerrors.NewClassNotFoundError(module, name, entry.order)
	}
	return s, nil
}

// Modules returns all registered module names, sorted
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moduleNamesLocked()
}

// Classes returns the class names of a module in declaration order
func (r *Registry) Classes(module string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.modules[module]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.order...)
}

func (r *Registry) moduleNamesLocked() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
