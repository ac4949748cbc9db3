package index

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/core"
)

// MemoryIndex is an in-memory implementation of the VectorIndex interface.
// Contents are lost on restart; useful for tests and one-off runs.
type MemoryIndex struct {
	entries map[string]candidate
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryIndex creates a new in-memory vector index
func NewMemoryIndex(logger *zap.Logger) *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]candidate),
		logger:  logger,
	}
}

// Upsert inserts or replaces windows with their vectors
func (m *MemoryIndex) Upsert(ctx context.Context, windows []core.Window, vectors [][]float32) error {
	if len(windows) != len(vectors) {
		return fmt.Errorf("window/vector count mismatch: %d != %d", len(windows), len(vectors))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range windows {
		m.entries[w.ID] = candidate{window: w, vector: vectors[i]}
	}
	return nil
}

// Search returns the topK most similar windows
func (m *MemoryIndex) Search(ctx context.Context, vector []float32, topK int, filter *core.SearchFilter) ([]core.SearchResult, error) {
	m.mu.RLock()
	candidates := make([]candidate, 0, len(m.entries))
	for _, c := range m.entries {
		if matchesFilter(&c.window, filter) {
			candidates = append(candidates, c)
		}
	}
	m.mu.RUnlock()

	return rankCandidates(candidates, vector, topK), nil
}

// DeleteBySource removes all windows belonging to a source message
func (m *MemoryIndex) DeleteBySource(ctx context.Context, sourceMessageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.entries {
		if c.window.SourceMessageID == sourceMessageID {
			delete(m.entries, id)
		}
	}
	return nil
}

// Count returns the number of stored windows
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Close is a no-op for the in-memory index
func (m *MemoryIndex) Close() error {
	return nil
}
