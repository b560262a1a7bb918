package hold

import (
	"context"
	"sync"
)

// Store keeps held transactions in insertion order.
type Store interface {
	Save(ctx context.Context, h HeldTransaction) error
	// Take removes the entry and returns it.
	Take(ctx context.Context, id string) (HeldTransaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]HeldTransaction, error)
}

type memoryStore struct {
	mu    sync.Mutex
	items []HeldTransaction
}

// NewMemoryStore returns a session-scoped store; everything is lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Save(_ context.Context, h HeldTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(h.ID) >= 0 {
		return ErrDuplicateID
	}
	m.items = append(m.items, h.Clone())
	return nil
}

func (m *memoryStore) Take(_ context.Context, id string) (HeldTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return HeldTransaction{}, ErrHeldNotFound
	}
	h := m.items[i]
	m.items = append(m.items[:i], m.items[i+1:]...)
	return h.Clone(), nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrHeldNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]HeldTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]HeldTransaction, len(m.items))
	for i, h := range m.items {
		out[i] = h.Clone()
	}
	return out, nil
}

func (m *memoryStore) indexOf(id string) int {
	for i, h := range m.items {
		if h.ID == id {
			return i
		}
	}
	return -1
}
