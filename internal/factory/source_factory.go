package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/adapters/imap"
	"github.com/mikey/newsletter-rag/internal/config"
	"github.com/mikey/newsletter-rag/internal/core"
)

// SourceFactory creates mail sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new mail source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailSource creates a mail source based on the configuration
func (f *SourceFactory) CreateMailSource() (core.MailSource, error) {
	sourceType := f.cfg.GetString("source.type")

	switch sourceType {
	case "imap":
		imapCfg := f.cfg.GetIMAP()
		return imap.NewSource(imapCfg.Server, imapCfg.Username, imapCfg.Password, imapCfg.Mailbox, f.logger)
	default:
		return nil, fmt.Errorf("unsupported mail source type: %s", sourceType)
	}
}
