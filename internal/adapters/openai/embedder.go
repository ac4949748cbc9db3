package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/newsletter-rag/internal/utils"
)

// Embedder generates embeddings using the OpenAI API
type Embedder struct {
	client        *openai.Client
	modelName     string
	maxBodySize   int
	limiter       *rate.Limiter
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEmbedder creates a new OpenAI embedder
func NewEmbedder(
	client *openai.Client,
	modelName string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Embedder {
	return &Embedder{
		client:        client,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		limiter:       rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// EmbedDocument embeds text destined for the index
func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

// EmbedQuery embeds a search query. OpenAI embedding models do not
// distinguish task types, so queries and documents share one code path.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	processed := e.textProcessor.ProcessText(text, e.maxBodySize)

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{processed},
		Model: openai.EmbeddingModel(e.modelName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings with OpenAI: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from OpenAI model %s", e.modelName)
	}
	return resp.Data[0].Embedding, nil
}
