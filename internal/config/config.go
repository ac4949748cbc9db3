package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/newsletter-rag/")
	v.AddConfigPath("$HOME/.newsletter-rag")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("NEWSLETTER_RAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvAliases(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnvAliases(v)
	return v
}

// bindEnvAliases binds the short environment names the segmenter settings are
// also known by, in addition to the NEWSLETTER_RAG_* forms.
func bindEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("segmenter.chunk_size", "NEWSLETTER_RAG_SEGMENTER_CHUNK_SIZE", "CHUNK_SIZE")
	_ = v.BindEnv("segmenter.chunk_overlap", "NEWSLETTER_RAG_SEGMENTER_CHUNK_OVERLAP", "CHUNK_OVERLAP")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mail source defaults
	v.SetDefault("source.type", "imap")
	v.SetDefault("imap.server", "imap.gmail.com:993")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")

	// Ingestion defaults
	v.SetDefault("ingest.mailbox", "INBOX")
	v.SetDefault("ingest.days_to_fetch", 30)
	v.SetDefault("ingest.max_emails", 100)
	v.SetDefault("ingest.quality_only", true)

	// Classifier defaults
	v.SetDefault("classifier.newsletter_threshold", 0.4)
	v.SetDefault("classifier.promotional_threshold", 0.5)
	v.SetDefault("classifier.quality_threshold", 0.3)

	// Segmenter defaults
	v.SetDefault("segmenter.chunk_size", 1000)
	v.SetDefault("segmenter.chunk_overlap", 200)

	// Provider selection defaults
	v.SetDefault("embedding.provider", "gemini")
	v.SetDefault("chat.provider", "gemini")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.embedding_model", "embedding-001")
	v.SetDefault("gemini.chat_model", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 2048)
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 8192)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 2048)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 8192)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.embedding_model_id", "amazon.titan-embed-text-v1")
	v.SetDefault("bedrock.max_body_size", 8192)

	// Vector index defaults
	v.SetDefault("index.type", "sqlite")
	v.SetDefault("index.sqlite_path", "/data/newsletters.db")
	v.SetDefault("index.mysql_dsn", "user:password@tcp(localhost:3306)/newsletter_rag")
	v.SetDefault("index.collection", "newsletters")

	// Search defaults
	v.SetDefault("search.top_k", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
