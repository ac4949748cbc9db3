package core

import (
	"time"
)

// Header is a single raw email header. Header names are matched
// case-insensitively; order is preserved as received.
type Header struct {
	Name  string
	Value string
}

// Message represents a raw email message as fetched from the mail source.
// It is read-only input to classification and is discarded if rejected.
type Message struct {
	ID          string
	Sender      string // display name, e.g. "Morning Brew"
	SenderEmail string
	Subject     string
	ReceivedAt  time.Time
	Snippet     string
	Headers     []Header
	BodyHTML    string
	BodyText    string
}

// Verdict represents the result of newsletter classification
type Verdict struct {
	IsNewsletter     bool
	IsPromotional    bool
	IsWorthKeeping   bool
	NewsletterScore  float64
	PromotionalScore float64
	QualityScore     float64
	Reasons          []string
}

// ScoredMessage pairs a message with its classification verdict
type ScoredMessage struct {
	Message Message
	Verdict Verdict
}

// CleanedDocument represents extracted newsletter prose, ready for segmentation
type CleanedDocument struct {
	Title           string
	Text            string
	WordCount       int
	SourceMessageID string
	SourceTitle     string
	SourceSender    string
	SourceDate      string
}

// Window is a bounded contiguous slice of a cleaned document's text,
// prepared for embedding. IDs are deterministic in (source id, index)
// so re-segmenting identical input upserts onto the same entries.
type Window struct {
	ID              string
	Text            string
	Index           int
	TotalWindows    int
	SourceMessageID string
	SourceTitle     string
	SourceSender    string
	SourceDate      string
}

// SearchResult represents a vector index hit with its similarity score
// (higher is more similar)
type SearchResult struct {
	WindowID        string
	Text            string
	Score           float64
	SourceMessageID string
	SourceTitle     string
	SourceSender    string
	SourceDate      string
}

// SearchFilter restricts vector search by window metadata
type SearchFilter struct {
	SenderContains  string
	SourceMessageID string
}

// Answer is a generated response with the retrieval context behind it
type Answer struct {
	Query   string
	Text    string
	Context string
	Sources []SearchResult
}

// IngestReport summarizes one ingestion batch
type IngestReport struct {
	BatchID   string
	Fetched   int
	Kept      int
	Extracted int
	Windows   int
	Indexed   int
	Started   time.Time
	Duration  time.Duration
}
