package searchd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shipq/sphinxql/internal/config"
)

// ErrUnknownAdapter is returned for an adapter name missing from the
// configuration.
var ErrUnknownAdapter = errors.New("searchd: unknown adapter")

// Registry opens the configured adapters on first use and keeps them until
// Close.
type Registry struct {
	cfg  *config.Config
	opts []Option
	open func(config.Adapter, ...Option) (*Adapter, error)

	mu       sync.Mutex
	adapters map[string]*Adapter
}

// NewRegistry returns a registry for cfg. opts apply to every adapter.
func NewRegistry(cfg *config.Config, opts ...Option) *Registry {
	return &Registry{
		cfg:      cfg,
		opts:     opts,
		open:     Open,
		adapters: make(map[string]*Adapter),
	}
}

// Names returns the configured adapter names.
func (r *Registry) Names() []string {
	if r.cfg == nil {
		return nil
	}
	return r.cfg.Names()
}

// Get returns the adapter called name, opening it if needed.
func (r *Registry) Get(name string) (*Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.adapters[name]; ok {
		return a, nil
	}
	if r.cfg == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownAdapter, name)
	}
	ac, ok := r.cfg.Adapter(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (configured: %v)", ErrUnknownAdapter, name, r.cfg.Names())
	}
	a, err := r.open(ac, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("searchd: open %q: %w", name, err)
	}
	r.adapters[name] = a
	return a, nil
}

// Register makes a the adapter called name, replacing any opened one
// without closing it.
func (r *Registry) Register(name string, a *Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = a
}

// Default returns the adapter of the [searchd] section.
func (r *Registry) Default() (*Adapter, error) {
	return r.Get(config.DefaultAdapter)
}

// Close closes every opened adapter. The registry can be used again
// afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, a := range r.adapters {
		if err := a.Close(); err != nil && !errors.Is(err, ErrNotCloser) {
			errs = append(errs, fmt.Errorf("searchd: close %q: %w", name, err))
		}
		delete(r.adapters, name)
	}
	return errors.Join(errs...)
}
