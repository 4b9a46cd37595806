package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/wm"
)

// StoreKey is the preference key holding the current theme.
const StoreKey = "theme.current"

// Styler receives header restyle notifications.
type Styler interface {
	StyleHeader(panelID string, style HeaderStyle)
}

// StylerFunc adapts a function to Styler.
type StylerFunc func(panelID string, style HeaderStyle)

// StyleHeader calls f(panelID, style).
func (f StylerFunc) StyleHeader(panelID string, style HeaderStyle) { f(panelID, style) }

// KV is the preference storage the applier persists themes to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// WindowManager is the subset of the window manager the applier needs.
type WindowManager interface {
	Panel(id string) (*panel.Panel, bool)
	Panels() []*panel.Panel
	Subscribe(l wm.Listener) func()
}

// Applier pushes header styles for the current theme.
type Applier struct {
	wm     WindowManager
	styler Styler
	store  KV
	logger *slog.Logger

	mu          sync.Mutex
	current     Theme
	unsubscribe func()
}

// NewApplier creates an applier starting from t. store may be nil.
func NewApplier(m WindowManager, styler Styler, store KV, t Theme, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Applier{wm: m, styler: styler, store: store, current: t, logger: logger}
}

// Load replaces the current theme with the persisted one, if any.
func (a *Applier) Load(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	raw, ok, err := a.store.Get(ctx, StoreKey)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return nil
	}
	var t Theme
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return fmt.Errorf("decode stored theme: %w", err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("stored theme: %w", err)
	}
	a.mu.Lock()
	a.current = t
	a.mu.Unlock()
	return nil
}

// Start styles every existing panel and restyles new panels as they appear.
func (a *Applier) Start() {
	a.mu.Lock()
	if a.unsubscribe != nil {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	unsubscribe := a.wm.Subscribe(func(ev wm.Event) {
		if ev.Type != wm.EventCreated {
			return
		}
		if p, ok := a.wm.Panel(ev.PanelID); ok {
			a.style(p, a.Current())
		}
	})

	a.mu.Lock()
	a.unsubscribe = unsubscribe
	a.mu.Unlock()
	a.restyleAll(a.Current())
}

// Stop stops restyling new panels.
func (a *Applier) Stop() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Current returns the active theme.
func (a *Applier) Current() Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Set validates t, makes it current, persists it and restyles every panel.
func (a *Applier) Set(ctx context.Context, t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.current = t
	a.mu.Unlock()

	if a.store != nil {
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode theme: %w", err)
		}
		if err := a.store.Set(ctx, StoreKey, string(raw)); err != nil {
			a.logger.Warn("failed to persist theme", "theme", t.Name, "error", err)
		}
	}
	a.logger.Info("theme applied", "theme", t.Name)
	a.restyleAll(t)
	return nil
}

func (a *Applier) restyleAll(t Theme) {
	for _, p := range a.wm.Panels() {
		a.style(p, t)
	}
}

func (a *Applier) style(p *panel.Panel, t Theme) {
	if a.styler == nil {
		return
	}
	a.styler.StyleHeader(p.ID, t.HeaderStyle(p.IsWidget()))
}
