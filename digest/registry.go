package digest

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kbukum/filesig/errors"
)

// Registry maps algorithm names to their definitions.
type Registry struct {
	mu         sync.RWMutex
	algorithms map[string]Algorithm
}

// NewRegistry creates a registry holding the built-in algorithms.
func NewRegistry() *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm)}
	for _, a := range builtins() {
		r.algorithms[a.Name] = a
	}
	return r
}

// Register adds or replaces an algorithm.
func (r *Registry) Register(a Algorithm) error {
	if a.Name == "" {
		return errors.InvalidArgument("name", "must not be empty")
	}
	if a.New == nil {
		return errors.InvalidArgument("new", fmt.Sprintf("algorithm %q has no constructor", a.Name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.algorithms[strings.ToLower(a.Name)] = a
	return nil
}

// Lookup returns the algorithm registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.algorithms[strings.ToLower(name)]
	if !ok {
		return Algorithm{}, errors.InvalidConfig(fmt.Sprintf("unknown digest algorithm %q", name)).
			WithDetail("supported", r.namesLocked())
	}
	return a, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var defaultRegistry = NewRegistry()

// Lookup finds name in the default registry.
func Lookup(name string) (Algorithm, error) { return defaultRegistry.Lookup(name) }

// Names lists the default registry.
func Names() []string { return defaultRegistry.Names() }

// Has reports whether the default registry knows name.
func Has(name string) bool { return defaultRegistry.Has(name) }

// Register adds an algorithm to the default registry.
func Register(a Algorithm) error { return defaultRegistry.Register(a) }
