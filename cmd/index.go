/*
Copyright © 2025 ragkit
*/
package cmd

import (
	"context"
	"log"

	"github.com/ragkit/indexer-be/service"
	"github.com/ragkit/indexer-be/types"
	"github.com/spf13/cobra"
)

// indexCmd runs the pipeline on a single PDF file.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a single PDF file into the vector store",
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		tags, _ := cmd.Flags().GetStringArray("tags")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if filePath == "" {
			log.Fatal("--file is required")
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

		if title == "" {
			title = service.GetFileNameWithoutExt(filePath)
		}
		stats, err := indexService.IndexFile(ctx, filePath, types.IngestRequest{
			Title:  title,
			Source: filePath,
			Tags:   tags,
		})
		if err != nil {
			log.Fatalf("Failed to index %s: %v", filePath, err)
		}
		log.Printf("Done: %d pages, %d chunks, %d vectors written", stats.Pages, stats.Chunks, stats.Vectors)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("file", "f", "", "Path to the PDF file to index")
	indexCmd.Flags().String("title", "", "Document title (defaults to the file name)")
	indexCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the document")
	indexCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the index before writing")
}
