package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/adapters/gemini"
	"github.com/mikey/newsletter-rag/internal/adapters/openai"
	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/core"
	"github.com/mikey/newsletter-rag/internal/utils"
)

// GeneratorFactory creates answer generators based on configuration
type GeneratorFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeneratorFactory creates a new generator factory
func NewGeneratorFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *GeneratorFactory {
	return &GeneratorFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGenerator creates a new answer generator based on the configuration
func (f *GeneratorFactory) CreateGenerator() (core.AnswerGenerator, error) {
	provider := f.cfg.GetString("chat.provider")

	switch provider {
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateGenerator()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateGenerator()
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", provider)
	}
}
