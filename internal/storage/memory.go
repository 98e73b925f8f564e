package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback store. It implements the full Store
// contract and is always available; Dual keeps one alongside the durable
// store so reads survive a persistence outage.
type MemoryStore struct {
	mu     sync.Mutex
	turns  map[string][]Turn
	usage  []UsageRecord
	scans  []ScanRecord
	alerts map[string]AlertRecord
	order  []string // alert insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns:  make(map[string][]Turn),
		alerts: make(map[string]AlertRecord),
	}
}

func (m *MemoryStore) AppendTurn(ctx context.Context, conversationID, role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.turns[conversationID]
	m.turns[conversationID] = append(turns, Turn{
		ConversationID: conversationID,
		Ordinal:        len(turns) + 1,
		Role:           role,
		Content:        content,
		At:             time.Now(),
	})
	return nil
}

func (m *MemoryStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.turns[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *MemoryStore) AppendUsage(ctx context.Context, rec UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, rec)
	return nil
}

func (m *MemoryStore) UsageRecords(ctx context.Context) ([]UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]UsageRecord, len(m.usage))
	copy(out, m.usage)
	return out, nil
}

func (m *MemoryStore) AppendScan(ctx context.Context, rec ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, rec)
	return nil
}

func (m *MemoryStore) ScanHistory(ctx context.Context, limit int) ([]ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ScanRecord, len(m.scans))
	copy(out, m.scans)
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) SaveAlert(ctx context.Context, rec AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.alerts[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.alerts[rec.ID] = rec
	return nil
}

func (m *MemoryStore) ListAlerts(ctx context.Context, unresolvedOnly bool) ([]AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []AlertRecord
	for _, id := range m.order {
		a := m.alerts[id]
		if unresolvedOnly && a.Resolved {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MemoryStore) ResolveAlert(ctx context.Context, id, resolution string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return fmt.Errorf("alert not found: %s", id)
	}
	a.Resolved = true
	if resolution != "" {
		a.ResolutionAction = resolution
	}
	m.alerts[id] = a
	return nil
}

func (m *MemoryStore) Close() error { return nil }
