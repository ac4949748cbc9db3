package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/adapters/bedrock"
	"github.com/mikey/newsletter-rag/internal/adapters/gemini"
	"github.com/mikey/newsletter-rag/internal/adapters/openai"
	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/core"
	"github.com/mikey/newsletter-rag/internal/utils"
)

// EmbedderFactory creates embedders based on configuration
type EmbedderFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEmbedderFactory creates a new embedder factory
func NewEmbedderFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *EmbedderFactory {
	return &EmbedderFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateEmbedder creates a new embedder based on the configuration
func (f *EmbedderFactory) CreateEmbedder() (core.Embedder, error) {
	provider := f.cfg.GetString("embedding.provider")

	switch provider {
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEmbedder()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEmbedder()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEmbedder()
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
