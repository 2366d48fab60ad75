/*
Copyright © 2025 ragkit
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ragkit/indexer-be/config"
	"github.com/ragkit/indexer-be/database"
	"github.com/ragkit/indexer-be/service"
	"github.com/ragkit/indexer-be/types"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "indexer-be",
	Short: "Index PDF documents into a vector store for similarity search",
	Long: `indexer-be runs a retrieval indexing pipeline: it loads a PDF,
splits the text into overlapping chunks, computes embedding vectors through
a local model server, and upserts the chunks into a hosted vector store
(MongoDB Atlas Vector Search by default, Weaviate as an alternative).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// loadConfig reads the config file named by the persistent --config flag.
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgFile)
}

// buildStore connects the vector store backend selected by the config.
func buildStore(ctx context.Context, cfg *config.Config) (database.VectorStore, error) {
	switch cfg.Store {
	case "weaviate":
		return database.NewWeaviateStore(cfg.WeaviateConfig.Host, cfg.WeaviateConfig.APIKey)
	case "mongo":
		return database.NewMongoVectorStore(ctx, cfg.MongoURI, cfg.Database, cfg.Collection, cfg.Index)
	default:
		return nil, fmt.Errorf("%w: unknown store %q", types.ErrInvalidConfig, cfg.Store)
	}
}

// buildIndexService wires the four pipeline stages from the config.
func buildIndexService(ctx context.Context, cfg *config.Config) (*service.IndexService, database.VectorStore, error) {
	splitter, err := service.NewSplitter(types.SplitterConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder := service.NewOpenAIEmbeddingService(
		cfg.EmbeddingEndpoint,
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingModel,
		cfg.Dimensions,
	)

	return service.NewIndexService(service.NewPDFService(), splitter, embedder, store), store, nil
}
