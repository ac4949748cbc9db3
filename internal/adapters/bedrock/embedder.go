package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/newsletter-rag/internal/utils"
)

// Embedder generates embeddings using Amazon Bedrock Titan embedding models
type Embedder struct {
	client        *bedrockruntime.Client
	modelID       string
	maxBodySize   int
	limiter       *rate.Limiter
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// titanEmbedRequest is the request payload for Titan embedding models
type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

// titanEmbedResponse is the response payload from Titan embedding models
type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbedder creates a new Bedrock embedder
func NewEmbedder(
	client *bedrockruntime.Client,
	modelID string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Embedder {
	return &Embedder{
		client:        client,
		modelID:       modelID,
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

// EmbedQuery embeds a search query. Titan models do not distinguish task
// types, so queries and documents share one code path.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	processed := e.textProcessor.ProcessText(text, e.maxBodySize)

	payload, err := json.Marshal(titanEmbedRequest{InputText: processed})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	output, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from Bedrock model %s", e.modelID)
	}
	return resp.Embedding, nil
}
