package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook is a cleanup step. It should return once ctx ends.
type Hook func(context.Context) error

// Handler coordinates graceful shutdown.
type Handler struct {
	timeout time.Duration

	mu    sync.Mutex
	hooks []Hook

	trigger     chan struct{}
	triggerOnce sync.Once
	done        chan struct{}
}

// NewHandler returns a handler whose hooks share a timeout budget.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in reverse registration order.
func (h *Handler) OnShutdown(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Trigger starts shutdown as if a signal had arrived.
func (h *Handler) Trigger() {
	h.triggerOnce.Do(func() { close(h.trigger) })
}

// Wait blocks until a signal, Trigger or ctx ends, then runs the hooks and
// returns their joined errors.
func (h *Handler) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-h.trigger:
	case <-ctx.Done():
	}

	return h.run()
}

func (h *Handler) run() error {
	defer close(h.done)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Done closes once the hooks have run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
