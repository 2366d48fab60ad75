/*
Copyright © 2025 ragkit
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// searchCmd embeds a query and prints the nearest indexed chunks.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the vector store for chunks similar to a query",
	Run: func(cmd *cobra.Command, args []string) {
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")

		if query == "" {
			log.Fatal("--query is required")
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

		results, err := indexService.Query(ctx, query, limit)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}

		if len(results) == 0 {
			fmt.Println("No results")
			return
		}
		for i, result := range results {
			fmt.Printf("%d. [score %.4f] %s (page %d, offset %d)\n", i+1, result.Score,
				result.Metadata.Title, result.Metadata.PageNum, result.Metadata.StartIndex)
			fmt.Println(result.Text)
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("query", "q", "", "Query text")
	searchCmd.Flags().IntP("limit", "k", 5, "Maximum number of results")
}
