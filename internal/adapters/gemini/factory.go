package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/utils"
)

// Factory creates Gemini-backed embedders and generators
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini clients
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

func (f *Factory) newClient() (*genai.Client, config.GeminiConfig, error) {
	geminiCfg := f.cfg.GetGemini()
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return nil, geminiCfg, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, geminiCfg, nil
}

// CreateEmbedder creates a new Gemini embedder
func (f *Factory) CreateEmbedder() (*Embedder, error) {
	client, geminiCfg, err := f.newClient()
	if err != nil {
		return nil, err
	}
	return NewEmbedder(
		client,
		geminiCfg.EmbeddingModel,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

// CreateGenerator creates a new Gemini answer generator
func (f *Factory) CreateGenerator() (*Generator, error) {
	client, geminiCfg, err := f.newClient()
	if err != nil {
		return nil, err
	}
	return NewGenerator(
		client,
		geminiCfg.ChatModel,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
