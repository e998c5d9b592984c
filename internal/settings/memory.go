package settings

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a map-backed Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[int64]ChatSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int64]ChatSettings)}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*ChatSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[chatID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *MemoryStore) Upsert(_ context.Context, s ChatSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ChatID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, chatID)
	return nil
}

func (m *MemoryStore) DumpAll(_ context.Context) ([]ChatSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ChatSettings, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
