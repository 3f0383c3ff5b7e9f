package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Host        string `mapstructure:"HOST"`
	Port        string `mapstructure:"PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// File Storage
	StoragePath   string `mapstructure:"STORAGE_PATH"`
	MaxUploadSize int64  `mapstructure:"MAX_UPLOAD_SIZE"`

	// Chunking
	ChunkSize    int `mapstructure:"CHUNK_SIZE"`
	ChunkOverlap int `mapstructure:"CHUNK_OVERLAP"`

	// Embedding Service (OpenAI compatible). The model and dimensions are
	// pinned here for the whole process: ingestion and query must embed with
	// the identical configuration or vectors become incomparable.
	EmbeddingAPIKey        string `mapstructure:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL       string `mapstructure:"EMBEDDING_BASE_URL"`
	EmbeddingModel         string `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions    int    `mapstructure:"EMBEDDING_DIMENSIONS"`
	EmbeddingBatchSize     int    `mapstructure:"EMBEDDING_BATCH_SIZE"`
	EmbeddingQueryPrefix   string `mapstructure:"EMBEDDING_QUERY_PREFIX"`
	EmbeddingPassagePrefix string `mapstructure:"EMBEDDING_PASSAGE_PREFIX"`

	// Generation Service
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`

	// Auth
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	JWTExpireMinutes int    `mapstructure:"JWT_EXPIRES_MINUTES"`
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8087")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "postgres://localhost:5432/filesgpt?sslmode=disable")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("MAX_UPLOAD_SIZE", 50*1024*1024)
	viper.SetDefault("CHUNK_SIZE", 1000)
	viper.SetDefault("CHUNK_OVERLAP", 150)
	viper.SetDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	viper.SetDefault("EMBEDDING_DIMENSIONS", 1536)
	viper.SetDefault("EMBEDDING_BATCH_SIZE", 64)
	viper.SetDefault("EMBEDDING_QUERY_PREFIX", "")
	viper.SetDefault("EMBEDDING_PASSAGE_PREFIX", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("JWT_EXPIRES_MINUTES", 1440)

	// Optional .env file.
	_ = viper.ReadInConfig()

	// Environment variables win over file values.
	for _, key := range []string{
		"HOST", "PORT", "GIN_MODE", "ENVIRONMENT", "LOG_LEVEL",
		"DATABASE_URL", "STORAGE_PATH", "MAX_UPLOAD_SIZE",
		"CHUNK_SIZE", "CHUNK_OVERLAP",
		"EMBEDDING_API_KEY", "EMBEDDING_BASE_URL", "EMBEDDING_MODEL",
		"EMBEDDING_DIMENSIONS", "EMBEDDING_BATCH_SIZE",
		"EMBEDDING_QUERY_PREFIX", "EMBEDDING_PASSAGE_PREFIX",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"JWT_SECRET", "JWT_EXPIRES_MINUTES",
	} {
		if val := os.Getenv(key); val != "" {
			viper.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
