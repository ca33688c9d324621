package scores

import (
	"context"
	"sort"
	"sync"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

// MemoryStore is an in-process ScoreStore
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*service.ScoreEntry
}

// NewMemoryStore creates an empty in-memory leaderboard
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Record(ctx context.Context, entry *service.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	cp := *entry

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MemoryStore) Top(ctx context.Context, limit int) ([]*service.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	sorted := make([]*service.ScoreEntry, len(m.entries))
	copy(sorted, m.entries)
	m.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return ranksAbove(sorted[i], sorted[j])
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]*service.ScoreEntry, len(sorted))
	for i, e := range sorted {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
