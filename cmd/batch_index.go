/*
Copyright © 2025 ragkit
*/
package cmd

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/ragkit/indexer-be/service"
	"github.com/ragkit/indexer-be/types"
	"github.com/spf13/cobra"
)

// batchIndexCmd runs the pipeline over every PDF in a directory.
var batchIndexCmd = &cobra.Command{
	Use:   "batch-index",
	Short: "Index every PDF file in a directory",
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		tags, _ := cmd.Flags().GetStringArray("tags")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if directory == "" {
			log.Fatal("--directory is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()
		indexService, store, err := buildIndexService(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize pipeline: %v", err)
		}
		defer store.Close(ctx)

		if reinit {
			if err := store.Drop(ctx); err != nil {
				log.Fatalf("Failed to reinitialize the vector store: %v", err)
			}
		}

		files, err := filepath.Glob(filepath.Join(directory, "*"))
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}

		for _, filePath := range files {
			if !strings.EqualFold(filepath.Ext(filePath), ".pdf") {
				continue
			}
			stats, err := indexService.IndexFile(ctx, filePath, types.IngestRequest{
				Title:  service.GetFileNameWithoutExt(filePath),
				Source: filePath,
				Tags:   tags,
			})
			if err != nil {
				log.Printf("Failed to index %s: %v", filePath, err)
				continue
			}
			log.Printf("Indexed %s: %d pages, %d chunks, %d vectors", filePath, stats.Pages, stats.Chunks, stats.Vectors)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchIndexCmd)

	batchIndexCmd.Flags().String("directory", "", "Path to the directory of PDF files to index")
	batchIndexCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the documents")
	batchIndexCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the index before writing")
}
