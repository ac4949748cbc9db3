package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngestionService runs the full ingestion pipeline: fetch, classify,
// extract, segment, embed, index. Per-message failures are logged and
// skipped; a single bad message never aborts the batch.
type IngestionService struct {
	source      MailSource
	classifier  MessageClassifier
	extractor   ContentExtractor
	segmenter   DocumentSegmenter
	embedder    Embedder
	index       VectorIndex
	logger      *zap.Logger
	daysToFetch int
	maxEmails   int
	qualityOnly bool
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source MailSource,
	classifier MessageClassifier,
	extractor ContentExtractor,
	segmenter DocumentSegmenter,
	embedder Embedder,
	index VectorIndex,
	logger *zap.Logger,
	daysToFetch int,
	maxEmails int,
	qualityOnly bool,
) *IngestionService {
	return &IngestionService{
		source:      source,
		classifier:  classifier,
		extractor:   extractor,
		segmenter:   segmenter,
		embedder:    embedder,
		index:       index,
		logger:      logger,
		daysToFetch: daysToFetch,
		maxEmails:   maxEmails,
		qualityOnly: qualityOnly,
	}
}

// IngestRecent fetches messages from the configured lookback window and
// runs them through the pipeline
func (s *IngestionService) IngestRecent(ctx context.Context) (*IngestReport, error) {
	since := time.Now().AddDate(0, 0, -s.daysToFetch)
	return s.Ingest(ctx, since)
}

// Ingest fetches messages received since the given time and runs them
// through the pipeline
func (s *IngestionService) Ingest(ctx context.Context, since time.Time) (*IngestReport, error) {
	report := &IngestReport{
		BatchID: uuid.NewString(),
		Started: time.Now(),
	}
	logger := s.logger.With(zap.String("batch_id", report.BatchID))

	msgs, err := s.source.Fetch(ctx, since, s.maxEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	report.Fetched = len(msgs)

	kept := s.classifier.Filter(msgs, s.qualityOnly)
	report.Kept = len(kept)
	logger.Info("Classified batch",
		zap.Int("fetched", report.Fetched),
		zap.Int("kept", report.Kept))

	for i := range kept {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		msg := &kept[i].Message

		doc, err := s.extractor.Extract(msg)
		if err != nil {
			logger.Warn("Skipping message without extractable content",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		report.Extracted++

		windows := s.segmenter.Segment(doc)
		report.Windows += len(windows)
		if len(windows) == 0 {
			continue
		}

		indexed, err := s.embedAndIndex(ctx, windows)
		if err != nil {
			logger.Warn("Failed to index document",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		report.Indexed += indexed
	}

	report.Duration = time.Since(report.Started)
	logger.Info("Ingestion complete",
		zap.Int("fetched", report.Fetched),
		zap.Int("kept", report.Kept),
		zap.Int("documents", report.Extracted),
		zap.Int("windows", report.Windows),
		zap.Int("indexed", report.Indexed),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// embedAndIndex embeds a document's windows and upserts them in one call,
// so writes for a given document id stay serialized. Windows whose
// embedding fails are skipped, not fatal.
func (s *IngestionService) embedAndIndex(ctx context.Context, windows []Window) (int, error) {
	kept := make([]Window, 0, len(windows))
	vectors := make([][]float32, 0, len(windows))
	for i := range windows {
		vec, err := s.embedder.EmbedDocument(ctx, windows[i].Text)
		if err != nil {
			s.logger.Warn("Failed to embed window",
				zap.String("window_id", windows[i].ID),
				zap.Error(err))
			continue
		}
		kept = append(kept, windows[i])
		vectors = append(vectors, vec)
	}
	if len(kept) == 0 {
		return 0, nil
	}
	if err := s.index.Upsert(ctx, kept, vectors); err != nil {
		return 0, err
	}
	return len(kept), nil
}

// answerSystemPrompt frames the generator as a newsletter analyst working
// only from the retrieved excerpts
const answerSystemPrompt = `You are a newsletter analyst. Answer the question using only the newsletter excerpts below.

Guidelines:
- Cite which newsletter each piece of information comes from.
- Include specific dates, numbers and names when the excerpts contain them.
- Synthesize across newsletters instead of repeating them.
- If the excerpts do not contain relevant information, say so clearly.

Excerpts are formatted as:
---
[Title] - [Sender] - [Date]
[Content]
---`

// AskService answers questions over indexed newsletter content
type AskService struct {
	embedder  Embedder
	index     VectorIndex
	generator AnswerGenerator
	logger    *zap.Logger
	topK      int
}

// NewAskService creates a new ask service
func NewAskService(
	embedder Embedder,
	index VectorIndex,
	generator AnswerGenerator,
	logger *zap.Logger,
	topK int,
) *AskService {
	return &AskService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		logger:    logger,
		topK:      topK,
	}
}

// Ask embeds the query, retrieves the most relevant windows and generates
// an answer grounded in them
func (s *AskService) Ask(ctx context.Context, query string, filter *SearchFilter) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.index.Search(ctx, vector, s.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	contextBlock := FormatContext(results)
	prompt := fmt.Sprintf("%s\n\n%s\n\nQuestion: %s", answerSystemPrompt, contextBlock, query)

	s.logger.Debug("Generating answer",
		zap.String("query", query),
		zap.Int("sources", len(results)))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Answer{
		Query:   query,
		Text:    text,
		Context: contextBlock,
		Sources: results,
	}, nil
}

// FormatContext renders search results as the excerpt blocks the system
// prompt describes
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return "No relevant newsletter content found."
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString("---\n")
		fmt.Fprintf(&b, "[%s] - [%s] - [%s]\n", r.SourceTitle, r.SourceSender, r.SourceDate)
		b.WriteString(r.Text)
		b.WriteString("\n---\n")
	}
	return strings.TrimSpace(b.String())
}
