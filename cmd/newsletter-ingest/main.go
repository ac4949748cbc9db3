package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/core"
	"github.com/mikey/newsletter-rag/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingestion *core.IngestionService,
	source core.MailSource,
	embedder core.Embedder,
	index core.VectorIndex,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := ingestion.IngestRecent(ctx)

	var total int
	if err == nil {
		if total, err = index.Count(ctx); err != nil {
			logger.Warn("Failed to read index size", zap.Error(err))
			err = nil
		}
	}

	// Close resources regardless of the run outcome
	if cerr := source.Close(); cerr != nil {
		logger.Error("Failed to close mail source", zap.Error(cerr))
	}
	if closer, ok := embedder.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			logger.Error("Failed to close embedder", zap.Error(cerr))
		}
	}
	if closer, ok := index.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			logger.Error("Failed to close vector index", zap.Error(cerr))
		}
	}

	if err != nil {
		logger.Error("Ingestion failed", zap.Error(err))
		return err
	}

	fmt.Printf("Batch %s: fetched %d, kept %d, documents %d, windows %d, indexed %d in %s\n",
		report.BatchID, report.Fetched, report.Kept, report.Extracted,
		report.Windows, report.Indexed, report.Duration.Round(time.Millisecond))
	fmt.Printf("Index now holds %d windows\n", total)
	return nil
}
