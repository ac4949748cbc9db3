package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/core"
)

func testWindow(source string, idx int, sender string) core.Window {
	return core.Window{
		ID:              fmt.Sprintf("%s_%d", source, idx),
		Text:            fmt.Sprintf("window %d of %s", idx, source),
		Index:           idx,
		TotalWindows:    2,
		SourceMessageID: source,
		SourceTitle:     "Title of " + source,
		SourceSender:    sender,
		SourceDate:      "2026-08-01T09:00:00Z",
	}
}

func seedIndex(t *testing.T, idx core.VectorIndex) {
	t.Helper()
	windows := []core.Window{
		testWindow("msg-a", 0, "Morning Brew <crew@morningbrew.com>"),
		testWindow("msg-a", 1, "Morning Brew <crew@morningbrew.com>"),
		testWindow("msg-b", 0, "The Hustle <news@thehustle.co>"),
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	}
	require.NoError(t, idx.Upsert(context.Background(), windows, vectors))
}

func TestMemoryIndexSearch(t *testing.T) {
	idx := NewMemoryIndex(zap.NewNop())
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "msg-a_0", results[0].WindowID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "msg-a_1", results[1].WindowID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "Title of msg-a", results[0].SourceTitle)
}

func TestMemoryIndexSearchWithFilter(t *testing.T) {
	idx := NewMemoryIndex(zap.NewNop())
	seedIndex(t, idx)

	bySender, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10,
		&core.SearchFilter{SenderContains: "hustle"})
	require.NoError(t, err)
	require.Len(t, bySender, 1)
	assert.Equal(t, "msg-b_0", bySender[0].WindowID)

	bySource, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10,
		&core.SearchFilter{SourceMessageID: "msg-a"})
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	none, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10,
		&core.SearchFilter{SenderContains: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryIndexUpsertReplaces(t *testing.T) {
	idx := NewMemoryIndex(zap.NewNop())
	seedIndex(t, idx)

	updated := testWindow("msg-a", 0, "Morning Brew <crew@morningbrew.com>")
	updated.Text = "rewritten"
	require.NoError(t, idx.Upsert(context.Background(),
		[]core.Window{updated}, [][]float32{{1, 0, 0}}))

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "rewritten", results[0].Text)
}

func TestMemoryIndexUpsertMismatch(t *testing.T) {
	idx := NewMemoryIndex(zap.NewNop())
	err := idx.Upsert(context.Background(),
		[]core.Window{testWindow("msg-a", 0, "s")}, nil)
	assert.Error(t, err)
}

func TestMemoryIndexDeleteBySource(t *testing.T) {
	idx := NewMemoryIndex(zap.NewNop())
	seedIndex(t, idx)

	require.NoError(t, idx.DeleteBySource(context.Background(), "msg-a"))

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Deleting an unknown source is not an error
	require.NoError(t, idx.DeleteBySource(context.Background(), "msg-z"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs score zero instead of dividing by zero
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestRankCandidatesTopK(t *testing.T) {
	candidates := []candidate{
		{window: testWindow("a", 0, "s"), vector: []float32{1, 0}},
		{window: testWindow("b", 0, "s"), vector: []float32{0.5, 0.5}},
		{window: testWindow("c", 0, "s"), vector: []float32{0, 1}},
	}

	results := rankCandidates(candidates, []float32{1, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a_0", results[0].WindowID)
	assert.Equal(t, "b_0", results[1].WindowID)

	assert.Nil(t, rankCandidates(candidates, []float32{1, 0}, 0))
	assert.Len(t, rankCandidates(candidates, []float32{1, 0}, 10), 3)
}
