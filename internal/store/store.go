// Package store persists small preference values keyed by string.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is a persistent key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.values, key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	var keys []string
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GeometryKeyPrefix namespaces persisted panel geometry.
const GeometryKeyPrefix = "geometry."

// Geometry stores panel rects as JSON under "geometry.<persist key>".
type Geometry struct {
	Store Store
}

// LoadGeometry returns the rect saved under key.
func (g Geometry) LoadGeometry(ctx context.Context, key string) (geometry.Rect, bool, error) {
	raw, ok, err := g.Store.Get(ctx, GeometryKeyPrefix+key)
	if err != nil || !ok {
		return geometry.Rect{}, false, err
	}
	var r geometry.Rect
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return geometry.Rect{}, false, fmt.Errorf("decode geometry %q: %w", key, err)
	}
	return r, true, nil
}

// SaveGeometry writes r under key.
func (g Geometry) SaveGeometry(ctx context.Context, key string, r geometry.Rect) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode geometry: %w", err)
	}
	return g.Store.Set(ctx, GeometryKeyPrefix+key, string(raw))
}

// Remembered lists the persist keys that have a saved rect.
func (g Geometry) Remembered(ctx context.Context) ([]string, error) {
	keys, err := g.Store.Keys(ctx, GeometryKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.TrimPrefix(k, GeometryKeyPrefix)
	}
	return out, nil
}

// Forget drops the rect saved under key. It reports whether one existed.
func (g Geometry) Forget(ctx context.Context, key string) (bool, error) {
	_, ok, err := g.Store.Get(ctx, GeometryKeyPrefix+key)
	if err != nil || !ok {
		return false, err
	}
	if err := g.Store.Delete(ctx, GeometryKeyPrefix+key); err != nil {
		return false, err
	}
	return true, nil
}
