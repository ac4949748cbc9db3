// Package index provides vector index implementations. All backends score
// candidates in process with cosine similarity; the SQL backends use the
// database for durable storage and metadata filtering, not for ranking.
package index

import (
	"math"
	"sort"
	"strings"

	"github.com/mikey/newsletter-rag/internal/core"
)

// candidate is a stored window plus its vector, ready for scoring
type candidate struct {
	window core.Window
	vector []float32
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// matchesFilter reports whether a window satisfies the search filter
func matchesFilter(w *core.Window, filter *core.SearchFilter) bool {
	if filter == nil {
		return true
	}
	if filter.SourceMessageID != "" && w.SourceMessageID != filter.SourceMessageID {
		return false
	}
	if filter.SenderContains != "" &&
		!strings.Contains(strings.ToLower(w.SourceSender), strings.ToLower(filter.SenderContains)) {
		return false
	}
	return true
}

// rankCandidates scores the candidates against the query vector and returns
// the topK best matches, highest similarity first
func rankCandidates(candidates []candidate, vector []float32, topK int) []core.SearchResult {
	if topK <= 0 {
		return nil
	}

	results := make([]core.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, core.SearchResult{
			WindowID:        c.window.ID,
			Text:            c.window.Text,
			Score:           cosineSimilarity(vector, c.vector),
			SourceMessageID: c.window.SourceMessageID,
			SourceTitle:     c.window.SourceTitle,
			SourceSender:    c.window.SourceSender,
			SourceDate:      c.window.SourceDate,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
