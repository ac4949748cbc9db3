package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/core"
	"github.com/mikey/newsletter-rag/internal/factory"
	"github.com/mikey/newsletter-rag/internal/logging"
)

var (
	// Provider flags
	embeddingProvider = flag.String("embedding-provider", "", "Embedding provider (gemini, openai, bedrock)")
	chatProvider      = flag.String("chat-provider", "", "Chat provider (gemini, openai)")
	geminiAPIKey      = flag.String("gemini-api-key", "", "API key for Google Gemini")
	openaiAPIKey      = flag.String("openai-api-key", "", "API key for OpenAI")

	// Index flags
	indexType  = flag.String("index", "", "Vector index type (memory, sqlite, mysql)")
	sqlitePath = flag.String("sqlite-path", "", "Path to the SQLite index database")
	mysqlDSN   = flag.String("mysql-dsn", "", "DSN for the MySQL index database")

	// Search flags
	topK           = flag.Int("top-k", 5, "Number of windows to retrieve")
	senderContains = flag.String("sender", "", "Only search windows whose sender contains this substring")
	sourceID       = flag.String("source-id", "", "Only search windows from this source message")
	showSources    = flag.Bool("sources", false, "Print the retrieved source windows")

	// Logging flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <question>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()

	embedder, err := factory.NewEmbedderFactory(cfg, logger, textProcessor).CreateEmbedder()
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	generator, err := factory.NewGeneratorFactory(cfg, logger, textProcessor).CreateGenerator()
	if err != nil {
		logger.Fatal("Failed to create answer generator", zap.Error(err))
	}
	index, err := factory.NewIndexFactory(cfg, logger).CreateVectorIndex()
	if err != nil {
		logger.Fatal("Failed to create vector index", zap.Error(err))
	}

	service := core.NewAskService(embedder, index, generator, logger, cfg.GetInt("search.top_k"))

	var filter *core.SearchFilter
	if *senderContains != "" || *sourceID != "" {
		filter = &core.SearchFilter{
			SenderContains:  *senderContains,
			SourceMessageID: *sourceID,
		}
	}

	start := time.Now()
	answer, err := service.Ask(context.Background(), query, filter)
	if err != nil {
		logger.Fatal("Failed to answer question", zap.Error(err))
	}

	fmt.Println(answer.Text)

	if *showSources {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			fmt.Printf("  [%.3f] %s - %s - %s\n", src.Score, src.SourceTitle, src.SourceSender, src.SourceDate)
		}
	}
	fmt.Printf("\nAnswered in %s from %d windows\n", time.Since(start).Round(time.Millisecond), len(answer.Sources))

	// Close any resources that need closing
	if closer, ok := embedder.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close embedder", zap.Error(err))
		}
	}
	if closer, ok := generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close answer generator", zap.Error(err))
		}
	}
	if closer, ok := index.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close vector index", zap.Error(err))
		}
	}
}

// createConfigFromFlags builds a configuration from command line flags,
// leaving defaults in place for anything not set
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	if *embeddingProvider != "" {
		v.Set("embedding.provider", *embeddingProvider)
	}
	if *chatProvider != "" {
		v.Set("chat.provider", *chatProvider)
	}
	if *geminiAPIKey != "" {
		v.Set("gemini.api_key", *geminiAPIKey)
	}
	if *openaiAPIKey != "" {
		v.Set("openai.api_key", *openaiAPIKey)
	}
	if *indexType != "" {
		v.Set("index.type", *indexType)
	}
	if *sqlitePath != "" {
		v.Set("index.sqlite_path", *sqlitePath)
	}
	if *mysqlDSN != "" {
		v.Set("index.mysql_dsn", *mysqlDSN)
	}
	v.Set("search.top_k", *topK)

	return config.NewFromViper(v)
}
