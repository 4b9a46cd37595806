package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/viewport"
)

// ViewportSink receives viewport changes. *wm.Manager satisfies it.
type ViewportSink interface {
	Viewport() geometry.Size
	SetViewport(geometry.Size)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-reads the usable screen size and pushes changes
// to the window manager, which re-fits snapped panels.
type Reconciler struct {
	provider viewport.Provider
	sink     ViewportSink
	logger   *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	reset    chan struct{}
	failing  bool
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, provider viewport.Provider, sink ViewportSink) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		provider: provider,
		sink:     sink,
		logger:   logger,
		reset:    make(chan struct{}, 1),
	}
}

// SetInterval changes the poll interval. A running loop picks it up on its
// next tick.
func (r *Reconciler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	changed := r.interval != d
	r.interval = d
	r.mu.Unlock()
	if !changed {
		return
	}
	select {
	case r.reset <- struct{}{}:
	default:
	}
}

// Run reconciles once, then on every tick. Blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	r.reconcile()

	r.mu.Lock()
	interval := r.interval
	r.mu.Unlock()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("viewport reconciler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("viewport reconciler stopped")
			return nil
		case <-r.reset:
			r.mu.Lock()
			interval = r.interval
			r.mu.Unlock()
			ticker.Reset(interval)
			r.logger.Debug("viewport poll interval changed", "interval", interval)
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() bool {
	return r.reconcile()
}

// reconcile reports whether the viewport changed.
func (r *Reconciler) reconcile() bool {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	size, err := r.provider.Size()
	if err != nil {
		r.mu.Lock()
		first := !r.failing
		r.failing = true
		r.mu.Unlock()
		// Log the first failure of a streak only.
		if first {
			r.logger.Warn("reconciler: failed to read viewport", "error", err)
		}
		return false
	}
	r.mu.Lock()
	r.failing = false
	r.mu.Unlock()

	if !size.Valid() || size == r.sink.Viewport() {
		return false
	}
	r.logger.Info("viewport changed", "from", r.sink.Viewport().String(), "to", size.String())
	r.sink.SetViewport(size)
	return true
}
