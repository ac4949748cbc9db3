package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/newsletter-rag/internal/utils"
)

// Embedder generates embeddings using the Gemini API. Document and query
// embeddings use different task types, matching how the vectors are used.
type Embedder struct {
	client        *genai.Client
	docModel      *genai.EmbeddingModel
	queryModel    *genai.EmbeddingModel
	modelName     string
	maxBodySize   int
	limiter       *rate.Limiter
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEmbedder creates a new Gemini embedder
func NewEmbedder(
	client *genai.Client,
	modelName string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Embedder {
	docModel := client.EmbeddingModel(modelName)
	docModel.TaskType = genai.TaskTypeRetrievalDocument

	queryModel := client.EmbeddingModel(modelName)
	queryModel.TaskType = genai.TaskTypeRetrievalQuery

	return &Embedder{
		client:        client,
		docModel:      docModel,
		queryModel:    queryModel,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		limiter:       rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// EmbedDocument embeds text destined for the index
func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, e.docModel, text)
}

// EmbedQuery embeds a search query
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, e.queryModel, text)
}

func (e *Embedder) embed(ctx context.Context, model *genai.EmbeddingModel, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	processed := e.textProcessor.ProcessText(text, e.maxBodySize)

	res, err := model.EmbedContent(ctx, genai.Text(processed))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content with Gemini: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from Gemini model %s", e.modelName)
	}
	return res.Embedding.Values, nil
}

// Close closes the underlying client
func (e *Embedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
