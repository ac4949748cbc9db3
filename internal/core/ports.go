package core

import (
	"context"
	"time"
)

// MailSource defines the interface for fetching raw messages
type MailSource interface {
	// Fetch returns up to max messages received since the given time,
	// newest first
	Fetch(ctx context.Context, since time.Time, max int) ([]Message, error)

	// Close releases the underlying connection
	Close() error
}

// MessageClassifier defines the interface for newsletter classification
type MessageClassifier interface {
	// Classify scores a single message. It never fails: internal errors
	// degrade to a maximally conservative verdict.
	Classify(msg *Message) Verdict

	// Filter classifies a batch and returns only accepted messages,
	// sorted by quality score descending
	Filter(msgs []Message, qualityOnly bool) []ScoredMessage
}

// ContentExtractor defines the interface for turning a raw message body
// into clean prose
type ContentExtractor interface {
	// Extract returns the cleaned document for a kept message
	Extract(msg *Message) (*CleanedDocument, error)
}

// DocumentSegmenter defines the interface for splitting a cleaned document
// into overlapping windows
type DocumentSegmenter interface {
	// Segment returns the ordered windows for a document
	Segment(doc *CleanedDocument) []Window
}

// Embedder defines the interface for converting text to vectors
type Embedder interface {
	// EmbedDocument embeds text destined for the index
	EmbedDocument(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery embeds a search query
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex defines the interface for storing and searching window vectors
type VectorIndex interface {
	// Upsert inserts or replaces windows with their vectors.
	// len(vectors) must equal len(windows).
	Upsert(ctx context.Context, windows []Window, vectors [][]float32) error

	// Search returns the topK most similar windows, optionally filtered
	// by metadata
	Search(ctx context.Context, vector []float32, topK int, filter *SearchFilter) ([]SearchResult, error)

	// DeleteBySource removes all windows belonging to a source message
	DeleteBySource(ctx context.Context, sourceMessageID string) error

	// Count returns the number of stored windows
	Count(ctx context.Context) (int, error)
}

// AnswerGenerator defines the interface for turning a prompt into
// natural-language text
type AnswerGenerator interface {
	// Generate returns the model's answer for the prompt
	Generate(ctx context.Context, prompt string) (string, error)
}
