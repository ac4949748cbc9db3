package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/adapters/extractor"
	"github.com/mikey/newsletter-rag/internal/classifier"
	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/core"
	"github.com/mikey/newsletter-rag/internal/factory"
	"github.com/mikey/newsletter-rag/internal/logging"
	"github.com/mikey/newsletter-rag/internal/segmenter"
	"github.com/mikey/newsletter-rag/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEmbedderFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGeneratorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIndexFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register mail source
	if err := container.Provide(func(f *factory.SourceFactory) (core.MailSource, error) {
		return f.CreateMailSource()
	}); err != nil {
		return nil, err
	}

	// Register embedder
	if err := container.Provide(func(f *factory.EmbedderFactory) (core.Embedder, error) {
		return f.CreateEmbedder()
	}); err != nil {
		return nil, err
	}

	// Register answer generator
	if err := container.Provide(func(f *factory.GeneratorFactory) (core.AnswerGenerator, error) {
		return f.CreateGenerator()
	}); err != nil {
		return nil, err
	}

	// Register vector index
	if err := container.Provide(func(f *factory.IndexFactory) (core.VectorIndex, error) {
		return f.CreateVectorIndex()
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.MessageClassifier, error) {
		classifierCfg := cfg.GetClassifier()
		c, err := classifier.New(classifier.Config{
			NewsletterThreshold:  classifierCfg.NewsletterThreshold,
			PromotionalThreshold: classifierCfg.PromotionalThreshold,
			QualityThreshold:     classifierCfg.QualityThreshold,
			Lists:                classifier.DefaultLists(),
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Initialized classifier",
			zap.Float64("newsletter_threshold", classifierCfg.NewsletterThreshold),
			zap.Float64("promotional_threshold", classifierCfg.PromotionalThreshold),
			zap.Float64("quality_threshold", classifierCfg.QualityThreshold))
		return c, nil
	}); err != nil {
		return nil, err
	}

	// Register content extractor
	if err := container.Provide(func(logger *zap.Logger) core.ContentExtractor {
		return extractor.New(logger)
	}); err != nil {
		return nil, err
	}

	// Register segmenter
	if err := container.Provide(func(cfg *config.Config) (core.DocumentSegmenter, error) {
		segmenterCfg := cfg.GetSegmenter()
		return segmenter.New(segmenterCfg.ChunkSize, segmenterCfg.ChunkOverlap)
	}); err != nil {
		return nil, err
	}

	// Register ingestion service
	if err := container.Provide(func(
		source core.MailSource,
		messageClassifier core.MessageClassifier,
		contentExtractor core.ContentExtractor,
		documentSegmenter core.DocumentSegmenter,
		embedder core.Embedder,
		index core.VectorIndex,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.IngestionService {
		ingestCfg := cfg.GetIngest()
		return core.NewIngestionService(
			source,
			messageClassifier,
			contentExtractor,
			documentSegmenter,
			embedder,
			index,
			logger,
			ingestCfg.DaysToFetch,
			ingestCfg.MaxEmails,
			ingestCfg.QualityOnly,
		)
	}); err != nil {
		return nil, err
	}

	// Register ask service
	if err := container.Provide(func(
		embedder core.Embedder,
		index core.VectorIndex,
		generator core.AnswerGenerator,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.AskService {
		return core.NewAskService(embedder, index, generator, logger, cfg.GetInt("search.top_k"))
	}); err != nil {
		return nil, err
	}

	return container, nil
}
