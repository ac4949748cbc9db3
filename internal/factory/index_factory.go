package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/adapters/index"
	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/core"
)

// IndexFactory creates vector indexes based on configuration
type IndexFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIndexFactory creates a new index factory
func NewIndexFactory(cfg *config.Config, logger *zap.Logger) *IndexFactory {
	return &IndexFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVectorIndex creates a vector index based on the configuration
func (f *IndexFactory) CreateVectorIndex() (core.VectorIndex, error) {
	indexCfg := f.cfg.GetIndex()

	switch indexCfg.Type {
	case "memory":
		return index.NewMemoryIndex(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(indexCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return index.NewSQLiteIndex(indexCfg.SQLitePath, f.logger)
	case "mysql":
		return index.NewMySQLIndex(indexCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", indexCfg.Type)
	}
}
