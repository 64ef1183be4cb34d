package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps matters in process memory, in insertion order.
type Memory struct {
	mu      sync.RWMutex
	order   []string
	matters map[string]Matter
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{matters: make(map[string]Matter)}
}

func (m *Memory) Save(ctx context.Context, matter Matter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if matter.ID == "" {
		return fmt.Errorf("store: matter id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.matters[matter.ID]; exists {
		return fmt.Errorf("store: duplicate matter %q", matter.ID)
	}
	m.matters[matter.ID] = matter
	m.order = append(m.order, matter.ID)
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (Matter, error) {
	if err := ctx.Err(); err != nil {
		return Matter{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	matter, ok := m.matters[id]
	if !ok {
		return Matter{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return matter, nil
}

func (m *Memory) List(ctx context.Context) ([]Matter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Matter, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.matters[id])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
