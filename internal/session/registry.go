package session

import (
	"context"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an untouched, idle Manager is kept before Sweep drops it.
const DefaultIdleTimeout = 5 * time.Minute

// Factory builds the Manager of a scope.
type Factory func(scope string) *Manager

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout sets how long an idle Manager survives without being fetched. Non-positive
// values keep DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

type entry struct {
	manager *Manager
	touched time.Time
}

// Registry owns one Manager per session scope. Managers are rebuilt from their slot on demand, so
// Sweep can drop any that sat idle past the idle timeout.
type Registry struct {
	factory     Factory
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	managers map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factory:     factory,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		managers:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the Manager of scope. A new Manager starts restoring its persisted session in the
// background and reports StateInitializing until Ready is closed.
func (r *Registry) Get(scope string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.managers[scope]
	if !ok {
		e = &entry{manager: r.factory(scope)}
		r.managers[scope] = e
		go e.manager.Init(context.Background())
	}
	e.touched = r.now()
	return e.manager
}

// Resolve returns the Manager of scope once its persisted session has been restored.
func (r *Registry) Resolve(ctx context.Context, scope string) *Manager {
	m := r.Get(scope)
	m.Init(ctx)
	return m
}

// Len returns the number of scopes with a Manager.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

// Sweep drops every Manager that is idle and was last fetched more than the idle timeout ago. It
// returns how many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for scope, e := range r.managers {
		if e.touched.After(cutoff) || !e.manager.Idle() {
			continue
		}
		delete(r.managers, scope)
		dropped++
	}
	return dropped
}

// Run sweeps every half idle timeout until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}
