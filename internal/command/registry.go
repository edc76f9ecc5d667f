// Package command is the named-command dispatch surface behind the command
// bridge: a registry of handlers invoked by name with positional arguments.
// Handlers run synchronously to completion; callers impose no deadline.
package command

import (
	"context"
	"sort"
	"sync"

	"appdna/internal/errors"
	"appdna/internal/logging"
)

// Handler executes one named command with its positional arguments.
type Handler func(ctx context.Context, args []interface{}) (interface{}, error)

// Registry dispatches named commands to registered handlers. Thread-safe.
type Registry struct {
	logger *logging.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty command registry.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// Register binds name to handler, replacing any previous binding.
func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	r.handlers[name] = handler
	r.mu.Unlock()

	r.logger.Debug("Registered command handler", map[string]interface{}{
		"command": name,
	})
}

// Execute runs the named command to completion and returns its result.
// Unknown names fail with UNKNOWN_COMMAND.
func (r *Registry) Execute(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.UnknownCommand, "command %q not found", name)
	}
	return handler(ctx, args)
}

// Has reports whether a handler is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RefreshHub fans the UI refresh signal out to subscribed listeners.
// Firing never fails and never blocks on a listener error; listeners run
// synchronously in subscription order.
type RefreshHub struct {
	mu        sync.Mutex
	listeners []func()
}

// NewRefreshHub creates a hub with no listeners.
func NewRefreshHub() *RefreshHub {
	return &RefreshHub{}
}

// OnRefresh subscribes fn to refresh signals.
func (h *RefreshHub) OnRefresh(fn func()) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Fire invokes every subscribed listener. Listeners run outside the hub
// lock so a listener may subscribe further listeners.
func (h *RefreshHub) Fire() int {
	h.mu.Lock()
	listeners := make([]func(), len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return len(listeners)
}
