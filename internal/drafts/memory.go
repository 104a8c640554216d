package drafts

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// NewMemoryStore constructs an in-memory draft store. Snapshots are cloned
// on the way in and out so callers cannot alias stored state.
func NewMemoryStore() interfaces.DraftStore {
	return &memoryStore{
		byUnit: make(map[string]*interfaces.ContentUnit),
	}
}

type memoryStore struct {
	mu     sync.RWMutex
	byUnit map[string]*interfaces.ContentUnit
}

func (m *memoryStore) GetDraft(_ context.Context, unitID string) (*interfaces.ContentUnit, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, ErrUnitIDRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.byUnit[unitID]
	if !ok {
		return nil, nil
	}
	return snapshot.Clone(), nil
}

func (m *memoryStore) SetDraft(_ context.Context, unitID string, unit *interfaces.ContentUnit) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrUnitIDRequired
	}
	if unit == nil {
		return ErrNilSnapshot
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byUnit[unitID] = unit.Clone()
	return nil
}

func (m *memoryStore) ClearDraft(_ context.Context, unitID string) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrUnitIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byUnit, unitID)
	return nil
}

func (m *memoryStore) ListDraftUnitIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.byUnit))
	for id := range m.byUnit {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) ClearAllDrafts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byUnit = make(map[string]*interfaces.ContentUnit)
	return nil
}
