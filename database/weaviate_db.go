package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/ragkit/indexer-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "totalPages", DataType: []string{"int"}},
			{Name: "startIndex", DataType: []string{"int"}},
			{Name: "tags", DataType: []string{"text[]"}},
		},
		VectorIndexType: "hnsw",
		Vectorizer:      "none", // vectors are computed client-side
	}
)

// WeaviateStore is an alternate VectorStore backend. Vectors are supplied by
// the pipeline's embedder, not by a Weaviate vectorizer module.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(host, apiKey string) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host = strings.TrimPrefix(host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: apiKey,
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateStore{client: client}, nil
}

// EnsureIndex creates the chunk class if it doesn't exist. Weaviate derives
// vector dimensionality from the first object, so dimensions is not part of
// the schema here.
func (s *WeaviateStore) EnsureIndex(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: vector dimensions must be positive, got %d", types.ErrInvalidConfig, dimensions)
	}
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return classifyWeaviateErr(err)
	}
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			return nil
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, classifyWeaviateErr(err))
	}
	return nil
}

func (s *WeaviateStore) Upsert(ctx context.Context, record *types.IndexedRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	_, err := s.client.Data().Creator().
		WithClassName(CHUNK_CLASS).
		WithID(RecordID(record)).
		WithProperties(recordProperties(record)).
		WithVector(record.Vector).
		Do(ctx)
	if err != nil {
		return classifyWeaviateErr(err)
	}
	return nil
}

func (s *WeaviateStore) BatchUpsert(ctx context.Context, records []types.IndexedRecord) error {
	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return err
		}
	}

	total := len(records)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				ID:         strfmt.UUID(RecordID(&records[j])),
				Properties: recordProperties(&records[j]),
				Vector:     records[j].Vector,
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, classifyWeaviateErr(err))
		}
		log.Printf("Inserted batch %d-%d of %d records", i, end, total)
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, vector []float32, limit int) ([]types.ScoredRecord, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is required", types.ErrInvalidConfig)
	}
	if limit <= 0 {
		limit = 5
	}

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "title"},
		{Name: "source"},
		{Name: "page"},
		{Name: "totalPages"},
		{Name: "startIndex"},
		{Name: "tags"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	response, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, classifyWeaviateErr(err)
	}

	var results []types.ScoredRecord
	data, ok := response.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{})
	if !ok {
		return results, nil
	}
	for _, item := range data {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		record := types.ScoredRecord{
			IndexedRecord: types.IndexedRecord{
				Text: asString(obj["text"]),
				Metadata: types.DocumentMetadata{
					Title:      asString(obj["title"]),
					Source:     asString(obj["source"]),
					PageNum:    asInt(obj["page"]),
					TotalPages: asInt(obj["totalPages"]),
					StartIndex: asInt(obj["startIndex"]),
					Tags:       parseStringArray(obj["tags"]),
				},
			},
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				// Weaviate reports cosine distance; flip it into a
				// similarity-style score.
				record.Score = 1 - distance
			}
		}
		results = append(results, record)
	}
	return results, nil
}

// Drop deletes the chunk class and everything indexed under it.
func (s *WeaviateStore) Drop(ctx context.Context) error {
	if err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(ctx); err != nil {
		return classifyWeaviateErr(err)
	}
	return nil
}

func (s *WeaviateStore) Close(ctx context.Context) error {
	return nil
}

func recordProperties(record *types.IndexedRecord) map[string]interface{} {
	return map[string]interface{}{
		"text":       record.Text,
		"title":      record.Metadata.Title,
		"source":     record.Metadata.Source,
		"page":       record.Metadata.PageNum,
		"totalPages": record.Metadata.TotalPages,
		"startIndex": record.Metadata.StartIndex,
		"tags":       record.Metadata.Tags,
	}
}

func classifyWeaviateErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "anonymous access") {
		return fmt.Errorf("%w: %v", types.ErrStoreAuth, err)
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") {
		return fmt.Errorf("%w: %v", types.ErrStoreConnection, err)
	}
	return err
}

func parseStringArray(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}
