package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	msgs []Message
	err  error
}

func (f *fakeSource) Fetch(ctx context.Context, since time.Time, max int) ([]Message, error) {
	return f.msgs, f.err
}

func (f *fakeSource) Close() error { return nil }

// fakeClassifier keeps every message whose subject is not "drop"
type fakeClassifier struct{}

func (f *fakeClassifier) Classify(msg *Message) Verdict {
	keep := msg.Subject != "drop"
	return Verdict{IsNewsletter: keep, IsWorthKeeping: keep, QualityScore: 0.5}
}

func (f *fakeClassifier) Filter(msgs []Message, qualityOnly bool) []ScoredMessage {
	var kept []ScoredMessage
	for i := range msgs {
		v := f.Classify(&msgs[i])
		if v.IsWorthKeeping {
			kept = append(kept, ScoredMessage{Message: msgs[i], Verdict: v})
		}
	}
	return kept
}

type fakeExtractor struct {
	failOn map[string]bool
}

func (f *fakeExtractor) Extract(msg *Message) (*CleanedDocument, error) {
	if f.failOn[msg.ID] {
		return nil, errors.New("no content")
	}
	return &CleanedDocument{
		Title:           msg.Subject,
		Text:            msg.BodyText,
		WordCount:       len(strings.Fields(msg.BodyText)),
		SourceMessageID: msg.ID,
		SourceTitle:     msg.Subject,
		SourceSender:    msg.SenderEmail,
		SourceDate:      "2026-08-01T09:00:00Z",
	}, nil
}

// fakeSegmenter yields one window per sentence
type fakeSegmenter struct{}

func (f *fakeSegmenter) Segment(doc *CleanedDocument) []Window {
	parts := strings.Split(doc.Text, ". ")
	windows := make([]Window, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		windows = append(windows, Window{
			ID:              fmt.Sprintf("%s_%d", doc.SourceMessageID, i),
			Text:            p,
			Index:           i,
			TotalWindows:    len(parts),
			SourceMessageID: doc.SourceMessageID,
			SourceTitle:     doc.SourceTitle,
			SourceSender:    doc.SourceSender,
			SourceDate:      doc.SourceDate,
		})
	}
	return windows
}

type fakeEmbedder struct {
	failOnText  string
	docCalls    int
	queryCalls  int
	queryVector []float32
}

func (f *fakeEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	f.docCalls++
	if f.failOnText != "" && strings.Contains(text, f.failOnText) {
		return nil, errors.New("embedding failed")
	}
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.queryVector != nil {
		return f.queryVector, nil
	}
	return []float32{1, 0}, nil
}

type fakeIndex struct {
	upserts [][]Window
	results []SearchResult
	err     error
}

func (f *fakeIndex) Upsert(ctx context.Context, windows []Window, vectors [][]float32) error {
	if f.err != nil {
		return f.err
	}
	if len(windows) != len(vectors) {
		return errors.New("count mismatch")
	}
	f.upserts = append(f.upserts, windows)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, topK int, filter *SearchFilter) ([]SearchResult, error) {
	return f.results, f.err
}

func (f *fakeIndex) DeleteBySource(ctx context.Context, sourceMessageID string) error { return nil }

func (f *fakeIndex) Count(ctx context.Context) (int, error) { return 0, nil }

type fakeGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.answer, f.err
}

func testMessages() []Message {
	return []Message{
		{ID: "m1", Subject: "keep one", BodyText: "First sentence. Second sentence. Third sentence."},
		{ID: "m2", Subject: "drop", BodyText: "Promotional noise."},
		{ID: "m3", Subject: "keep two", BodyText: "Only sentence here."},
	}
}

func newTestIngestion(source MailSource, extractor ContentExtractor, embedder Embedder, index VectorIndex) *IngestionService {
	return NewIngestionService(
		source, &fakeClassifier{}, extractor, &fakeSegmenter{},
		embedder, index, zap.NewNop(), 30, 100, true,
	)
}

func TestIngestHappyPath(t *testing.T) {
	index := &fakeIndex{}
	embedder := &fakeEmbedder{}
	svc := newTestIngestion(&fakeSource{msgs: testMessages()},
		&fakeExtractor{}, embedder, index)

	report, err := svc.IngestRecent(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Kept)
	assert.Equal(t, 2, report.Extracted)
	assert.Equal(t, 4, report.Windows)
	assert.Equal(t, 4, report.Indexed)
	assert.Equal(t, 4, embedder.docCalls)

	// One upsert per document
	require.Len(t, index.upserts, 2)
	assert.Len(t, index.upserts[0], 3)
	assert.Len(t, index.upserts[1], 1)
}

func TestIngestSkipsExtractionFailures(t *testing.T) {
	index := &fakeIndex{}
	svc := newTestIngestion(&fakeSource{msgs: testMessages()},
		&fakeExtractor{failOn: map[string]bool{"m1": true}},
		&fakeEmbedder{}, index)

	report, err := svc.IngestRecent(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Kept)
	assert.Equal(t, 1, report.Extracted)
	assert.Equal(t, 1, report.Indexed)
	assert.Len(t, index.upserts, 1)
}

func TestIngestSkipsFailedEmbeddings(t *testing.T) {
	index := &fakeIndex{}
	svc := newTestIngestion(&fakeSource{msgs: testMessages()},
		&fakeExtractor{}, &fakeEmbedder{failOnText: "Second"}, index)

	report, err := svc.IngestRecent(context.Background())
	require.NoError(t, err)

	// One window of m1 fails to embed; the rest still land
	assert.Equal(t, 4, report.Windows)
	assert.Equal(t, 3, report.Indexed)
	require.Len(t, index.upserts, 2)
	assert.Len(t, index.upserts[0], 2)
}

func TestIngestFetchFailureAborts(t *testing.T) {
	svc := newTestIngestion(&fakeSource{err: errors.New("connection reset")},
		&fakeExtractor{}, &fakeEmbedder{}, &fakeIndex{})

	_, err := svc.IngestRecent(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIngestStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	index := &fakeIndex{}
	svc := newTestIngestion(&fakeSource{msgs: testMessages()},
		&fakeExtractor{}, &fakeEmbedder{}, index)

	report, err := svc.Ingest(ctx, time.Now().AddDate(0, 0, -1))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, index.upserts)
}

func TestAskBuildsGroundedPrompt(t *testing.T) {
	results := []SearchResult{
		{
			WindowID:     "m1_0",
			Text:         "The funding round closed at a higher valuation.",
			Score:        0.92,
			SourceTitle:  "Deal Brief",
			SourceSender: "Deals <deals@example.org>",
			SourceDate:   "2026-08-01T09:00:00Z",
		},
	}
	generator := &fakeGenerator{answer: "The round closed higher."}
	embedder := &fakeEmbedder{}
	svc := NewAskService(embedder, &fakeIndex{results: results}, generator, zap.NewNop(), 5)

	answer, err := svc.Ask(context.Background(), "What happened with the round?", nil)
	require.NoError(t, err)

	assert.Equal(t, "The round closed higher.", answer.Text)
	assert.Equal(t, "What happened with the round?", answer.Query)
	assert.Equal(t, results, answer.Sources)
	assert.Equal(t, 1, embedder.queryCalls)

	assert.Contains(t, generator.lastPrompt, "newsletter analyst")
	assert.Contains(t, generator.lastPrompt, "[Deal Brief] - [Deals <deals@example.org>] - [2026-08-01T09:00:00Z]")
	assert.Contains(t, generator.lastPrompt, "The funding round closed at a higher valuation.")
	assert.Contains(t, generator.lastPrompt, "Question: What happened with the round?")
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	svc := NewAskService(&fakeEmbedder{}, &fakeIndex{}, &fakeGenerator{}, zap.NewNop(), 5)

	_, err := svc.Ask(context.Background(), "   ", nil)
	assert.Error(t, err)
}

func TestAskWithNoResults(t *testing.T) {
	generator := &fakeGenerator{answer: "I could not find anything relevant."}
	svc := NewAskService(&fakeEmbedder{}, &fakeIndex{}, generator, zap.NewNop(), 5)

	answer, err := svc.Ask(context.Background(), "anything?", nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Context, "No relevant newsletter content found.")
	assert.Empty(t, answer.Sources)
}

func TestAskPropagatesGeneratorError(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model overloaded")}
	svc := NewAskService(&fakeEmbedder{}, &fakeIndex{}, generator, zap.NewNop(), 5)

	_, err := svc.Ask(context.Background(), "anything?", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, "No relevant newsletter content found.", FormatContext(nil))

	block := FormatContext([]SearchResult{
		{Text: "one", SourceTitle: "A", SourceSender: "a@x", SourceDate: "d1"},
		{Text: "two", SourceTitle: "B", SourceSender: "b@x", SourceDate: "d2"},
	})
	assert.Contains(t, block, "---\n[A] - [a@x] - [d1]\none\n---")
	assert.Contains(t, block, "[B] - [b@x] - [d2]\ntwo")
}
