package config

// IMAPConfig represents the configuration for the IMAP mail source
type IMAPConfig struct {
	Server   string
	Username string
	Password string
	Mailbox  string
}

// IngestConfig represents the configuration for batch ingestion
type IngestConfig struct {
	DaysToFetch int
	MaxEmails   int
	QualityOnly bool
}

// ClassifierConfig represents the newsletter classifier thresholds
type ClassifierConfig struct {
	NewsletterThreshold  float64
	PromotionalThreshold float64
	QualityThreshold     float64
}

// SegmenterConfig represents the text segmentation configuration
type SegmenterConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxBodySize    int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxBodySize    int
}

// BedrockConfig represents the configuration for Amazon Bedrock embeddings
type BedrockConfig struct {
	Region           string
	EmbeddingModelID string
	MaxBodySize      int
}

// IndexConfig represents the vector index configuration
type IndexConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
	Collection string
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Server:   c.GetString("imap.server"),
		Username: c.GetString("imap.username"),
		Password: c.GetString("imap.password"),
		Mailbox:  c.GetString("ingest.mailbox"),
	}
}

// GetIngest returns the ingestion configuration
func (c *Config) GetIngest() IngestConfig {
	return IngestConfig{
		DaysToFetch: c.GetInt("ingest.days_to_fetch"),
		MaxEmails:   c.GetInt("ingest.max_emails"),
		QualityOnly: c.GetBool("ingest.quality_only"),
	}
}

// GetClassifier returns the classifier thresholds
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		NewsletterThreshold:  c.GetFloat64("classifier.newsletter_threshold"),
		PromotionalThreshold: c.GetFloat64("classifier.promotional_threshold"),
		QualityThreshold:     c.GetFloat64("classifier.quality_threshold"),
	}
}

// GetSegmenter returns the segmentation configuration
func (c *Config) GetSegmenter() SegmenterConfig {
	return SegmenterConfig{
		ChunkSize:    c.GetInt("segmenter.chunk_size"),
		ChunkOverlap: c.GetInt("segmenter.chunk_overlap"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:         c.GetString("gemini.api_key"),
		EmbeddingModel: c.GetString("gemini.embedding_model"),
		ChatModel:      c.GetString("gemini.chat_model"),
		MaxTokens:      c.GetInt("gemini.max_tokens"),
		Temperature:    float32(c.GetFloat64("gemini.temperature")),
		TopP:           float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize:    c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		EmbeddingModel: c.GetString("openai.embedding_model"),
		ChatModel:      c.GetString("openai.chat_model"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		TopP:           float32(c.GetFloat64("openai.top_p")),
		MaxBodySize:    c.GetInt("openai.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:           c.GetString("bedrock.region"),
		EmbeddingModelID: c.GetString("bedrock.embedding_model_id"),
		MaxBodySize:      c.GetInt("bedrock.max_body_size"),
	}
}

// GetIndex returns the vector index configuration
func (c *Config) GetIndex() IndexConfig {
	return IndexConfig{
		Type:       c.GetString("index.type"),
		SQLitePath: c.GetString("index.sqlite_path"),
		MySQLDSN:   c.GetString("index.mysql_dsn"),
		Collection: c.GetString("index.collection"),
	}
}
