package config

import (
	"fmt"

	"github.com/ragkit/indexer-be/types"
	"github.com/spf13/viper"
)

type Config struct {
	Store             string              `mapstructure:"store"` // "mongo" or "weaviate"
	MongoURI          string              `mapstructure:"MONGODB_URI"`
	Database          string              `mapstructure:"database"`
	Collection        string              `mapstructure:"collection"`
	Index             string              `mapstructure:"index"`
	EmbeddingEndpoint string              `mapstructure:"embedding_endpoint"`
	EmbeddingModel    string              `mapstructure:"embedding_model"`
	EmbeddingAPIKey   string              `mapstructure:"OPENAI_API_KEY"`
	Dimensions        int                 `mapstructure:"dimensions"`
	ChunkSize         int                 `mapstructure:"chunk_size"`
	ChunkOverlap      int                 `mapstructure:"chunk_overlap"`
	WeaviateConfig    WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Defaults matching the tutorial pipeline
	v.SetDefault("store", "mongo")
	v.SetDefault("database", "rag_db")
	v.SetDefault("collection", "documents")
	v.SetDefault("index", "vector_index")
	v.SetDefault("embedding_endpoint", "http://localhost:11434/v1")
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("MONGODB_URI")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the invariants the pipeline depends on before any stage runs.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", types.ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size %d)", types.ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	}
	switch c.Store {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("%w: MONGODB_URI is required for the mongo store", types.ErrInvalidConfig)
		}
	case "weaviate":
		if c.WeaviateConfig.Host == "" {
			return fmt.Errorf("%w: weaviate host is required for the weaviate store", types.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", types.ErrInvalidConfig, c.Store)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: embedding_model is required", types.ErrInvalidConfig)
	}
	return nil
}
