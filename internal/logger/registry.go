// internal/logger/registry.go

package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// Registry tracks the facades of a process by application name. It is
// passed explicitly to New so that tests can use isolated registries.
type Registry struct {
	once    sync.Once
	mu      sync.RWMutex
	facades map[string]*Facade
	errOut  io.Writer
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{errOut: os.Stderr}
}

// DefaultRegistry returns the process-wide registry used by the binaries.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// initialize prepares the registry. Only the first call has an effect.
func (r *Registry) initialize() {
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.facades == nil {
			r.facades = make(map[string]*Facade)
		}
		if r.errOut == nil {
			r.errOut = os.Stderr
		}
	})
}

// register stores f under its application name. A facade previously
// registered under the same name is closed.
func (r *Registry) register(f *Facade) {
	r.mu.Lock()
	previous := r.facades[f.application]
	r.facades[f.application] = f
	r.mu.Unlock()

	if previous != nil && previous != f {
		if err := previous.closeSinks(); err != nil {
			fmt.Fprintf(r.errOut, "[WARN] Error closing replaced logger '%s': %v\n", f.application, err)
		}
	}
}

// unregister removes f if it is still the facade registered under its name.
func (r *Registry) unregister(f *Facade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.facades[f.application] == f {
		delete(r.facades, f.application)
	}
}

// Get retrieves a facade by application name.
// Returns nil if no facade is registered under that name.
func (r *Registry) Get(name string) *Facade {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.facades[name]
	if !ok {
		return nil
	}
	return f
}

// Names returns the sorted application names of all registered facades.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.facades))
	for name := range r.facades {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll closes all registered facades and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	facades := r.facades
	r.facades = make(map[string]*Facade)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for name, f := range facades {
		wg.Add(1)
		go func(name string, f *Facade) {
			defer wg.Done()
			if err := f.closeSinks(); err != nil {
				fmt.Fprintf(r.errOut, "[WARN] Error closing logger '%s': %v\n", name, err)
			}
		}(name, f)
	}
	wg.Wait()
}
