// Package effect creates, finds and tears down named effect instances from
// factories registered under a kind.
package effect

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/matt-g-everett/scrollfx/util"
)

var (
	// ErrUnknownKind is returned when no factory is registered for a kind.
	ErrUnknownKind = errors.New("effect: unknown kind")
	// ErrDuplicate is returned when a kind or instance name is already taken.
	ErrDuplicate = errors.New("effect: already registered")
)

// An Effect is a running effect instance.
type Effect interface {
	Start()
	Stop()
	Destroy()
}

// Factory builds an instance of an effect kind.
type Factory func(name string) (Effect, error)

type instance struct {
	kind   string
	effect Effect
}

// Registry maps kinds to factories and names to live instances.
type Registry struct {
	factories map[string]Factory
	instances map[string]instance
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]instance),
	}
}

// Register adds a factory for kind.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" || f == nil {
		return fmt.Errorf("effect: kind %q needs a name and a factory", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: kind %s", ErrDuplicate, kind)
	}
	r.factories[kind] = f
	return nil
}

// Create builds a new instance of kind and tracks it under name.
func (r *Registry) Create(kind, name string) (Effect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if _, exists := r.instances[name]; exists {
		return nil, fmt.Errorf("%w: instance %s", ErrDuplicate, name)
	}

	e, err := f(name)
	if err != nil {
		return nil, fmt.Errorf("effect: create %s %s: %w", kind, name, err)
	}
	r.instances[name] = instance{kind: kind, effect: e}
	util.Info("Created %s effect %s", kind, name)
	return e, nil
}

// Get returns the instance tracked under name.
func (r *Registry) Get(name string) (Effect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[name]
	return inst.effect, ok
}

// Kind returns the kind an instance was created from.
func (r *Registry) Kind(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[name]
	return inst.kind, ok
}

// Destroy tears down and forgets the instance tracked under name. It reports
// whether there was one; destroying an unknown name does nothing.
func (r *Registry) Destroy(name string) bool {
	r.mu.Lock()
	inst, ok := r.instances[name]
	delete(r.instances, name)
	r.mu.Unlock()

	if !ok {
		return false
	}
	inst.effect.Destroy()
	util.Info("Destroyed %s effect %s", inst.kind, name)
	return true
}

// DestroyAll tears down every instance in name order.
func (r *Registry) DestroyAll() {
	for _, name := range r.Names() {
		r.Destroy(name)
	}
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Names returns the live instance names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instances))
	for n := range r.instances {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
