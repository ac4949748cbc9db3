package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "imap", cfg.GetString("source.type"))
	assert.Equal(t, "INBOX", cfg.GetString("ingest.mailbox"))
	assert.Equal(t, 30, cfg.GetInt("ingest.days_to_fetch"))
	assert.Equal(t, 100, cfg.GetInt("ingest.max_emails"))
	assert.True(t, cfg.GetBool("ingest.quality_only"))
	assert.Equal(t, 5, cfg.GetInt("search.top_k"))
	assert.Equal(t, "sqlite", cfg.GetString("index.type"))
}

func TestClassifierDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	classifierCfg := cfg.GetClassifier()
	assert.Equal(t, 0.4, classifierCfg.NewsletterThreshold)
	assert.Equal(t, 0.5, classifierCfg.PromotionalThreshold)
	assert.Equal(t, 0.3, classifierCfg.QualityThreshold)
}

func TestSegmenterDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	segmenterCfg := cfg.GetSegmenter()
	assert.Equal(t, 1000, segmenterCfg.ChunkSize)
	assert.Equal(t, 200, segmenterCfg.ChunkOverlap)
}

func TestSegmenterEnvAliases(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "1500")
	t.Setenv("CHUNK_OVERLAP", "300")

	cfg := NewFromViper(NewEmptyViper())
	segmenterCfg := cfg.GetSegmenter()
	assert.Equal(t, 1500, segmenterCfg.ChunkSize)
	assert.Equal(t, 300, segmenterCfg.ChunkOverlap)
}

func TestSegmenterPrefixedEnvWinsOverAlias(t *testing.T) {
	t.Setenv("NEWSLETTER_RAG_SEGMENTER_CHUNK_SIZE", "800")
	t.Setenv("CHUNK_SIZE", "1500")

	cfg := NewFromViper(NewEmptyViper())
	assert.Equal(t, 800, cfg.GetSegmenter().ChunkSize)
}

func TestTypedAccessors(t *testing.T) {
	v := NewEmptyViper()
	v.Set("imap.server", "mail.example.org:993")
	v.Set("imap.username", "reader")
	v.Set("gemini.api_key", "key-123")
	cfg := NewFromViper(v)

	imapCfg := cfg.GetIMAP()
	assert.Equal(t, "mail.example.org:993", imapCfg.Server)
	assert.Equal(t, "reader", imapCfg.Username)
	assert.Equal(t, "INBOX", imapCfg.Mailbox)

	geminiCfg := cfg.GetGemini()
	assert.Equal(t, "key-123", geminiCfg.APIKey)
	assert.Equal(t, "embedding-001", geminiCfg.EmbeddingModel)
	assert.Equal(t, 8192, geminiCfg.MaxBodySize)

	bedrockCfg := cfg.GetBedrock()
	assert.Equal(t, "us-east-1", bedrockCfg.Region)
	assert.Equal(t, "amazon.titan-embed-text-v1", bedrockCfg.EmbeddingModelID)
}

func TestGetDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("some.timeout", "2m30s")
	cfg := NewFromViper(v)

	d, err := cfg.GetDuration("some.timeout")
	require.NoError(t, err)
	assert.Equal(t, "2m30s", d.String())

	_, err = cfg.GetDuration("missing.key")
	assert.Error(t, err)
}
