package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// Listener is the base interface for commit listeners. A listener
// implements any of OnMint and OnWithdraw to receive those events.
type Listener interface {
	Name() string
}

// OnMint is notified after a mint commits.
type OnMint interface {
	Listener
	OnMint(ctx context.Context, r types.MintReceipt) error
}

// OnWithdraw is notified after a withdrawal commits.
type OnWithdraw interface {
	Listener
	OnWithdraw(ctx context.Context, r types.WithdrawReceipt) error
}

// registry holds registered listeners with their hooks cached by type.
type registry struct {
	mu         sync.RWMutex
	listeners  []Listener
	onMint     []OnMint
	onWithdraw []OnWithdraw
	logger     *slog.Logger
}

func newRegistry() *registry {
	return &registry{logger: slog.Default()}
}

// Register adds a listener. Names must be unique.
func (r *registry) Register(ln Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.listeners {
		if existing.Name() == ln.Name() {
			return fmt.Errorf("listener: duplicate registration: %s", ln.Name())
		}
	}
	r.listeners = append(r.listeners, ln)

	if v, ok := ln.(OnMint); ok {
		r.onMint = append(r.onMint, v)
	}
	if v, ok := ln.(OnWithdraw); ok {
		r.onWithdraw = append(r.onWithdraw, v)
	}
	return nil
}

// emitMint notifies OnMint listeners. Errors are logged, never returned:
// the mint has already committed.
func (r *registry) emitMint(ctx context.Context, receipt types.MintReceipt) {
	r.mu.RLock()
	hooks := r.onMint
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnMint(ctx, receipt); err != nil {
			r.logger.Warn("listener failed", "listener", h.Name(), "event", types.EventMint, "error", err)
		}
	}
}

// emitWithdraw notifies OnWithdraw listeners.
func (r *registry) emitWithdraw(ctx context.Context, receipt types.WithdrawReceipt) {
	r.mu.RLock()
	hooks := r.onWithdraw
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnWithdraw(ctx, receipt); err != nil {
			r.logger.Warn("listener failed", "listener", h.Name(), "event", types.EventWithdraw, "error", err)
		}
	}
}
