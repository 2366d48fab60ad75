package service

import (
	"context"
	"log"
	"time"

	"github.com/ragkit/indexer-be/database"
	"github.com/ragkit/indexer-be/types"
)

const embedBatchSize = 64

// IndexStats summarizes one pipeline run.
type IndexStats struct {
	Pages   int
	Chunks  int
	Vectors int
}

// IndexService composes the four pipeline stages: load, split, embed, write.
// All dependencies are injected so each stage can be substituted in tests.
type IndexService struct {
	loader   DocumentLoader
	splitter ChunkSplitter
	embedder Embedder
	store    database.VectorStore

	// Timeouts for the two network-bound stages. The file and split
	// stages are local and run unbounded.
	embedTimeout  time.Duration
	upsertTimeout time.Duration
}

func NewIndexService(
	loader DocumentLoader,
	splitter ChunkSplitter,
	embedder Embedder,
	store database.VectorStore,
) *IndexService {
	return &IndexService{
		loader:        loader,
		splitter:      splitter,
		embedder:      embedder,
		store:         store,
		embedTimeout:  60 * time.Second,
		upsertTimeout: 30 * time.Second,
	}
}

// IndexFile runs the pipeline on one source file: every page is loaded,
// split into overlapping chunks, embedded, and upserted into the vector
// store. The first error aborts the rest of the run.
func (s *IndexService) IndexFile(ctx context.Context, path string, req types.IngestRequest) (IndexStats, error) {
	var stats IndexStats

	docs, err := s.loader.Load(path, req)
	if err != nil {
		return stats, err
	}
	stats.Pages = len(docs)

	chunks := s.splitter.Split(docs)
	stats.Chunks = len(chunks)
	if len(chunks) == 0 {
		log.Printf("No text extracted from %s, nothing to index", path)
		return stats, nil
	}

	records := make([]types.IndexedRecord, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		vectors, err := s.embedBatch(ctx, texts)
		if err != nil {
			return stats, err
		}

		for i, chunk := range batch {
			records = append(records, types.IndexedRecord{
				Text:     chunk.Content,
				Metadata: chunk.Metadata,
				Vector:   vectors[i],
			})
		}
	}

	upsertCtx, cancel := context.WithTimeout(ctx, s.upsertTimeout)
	defer cancel()
	if err := s.store.EnsureIndex(upsertCtx, s.embedder.Dimensions()); err != nil {
		return stats, err
	}
	if err := s.store.BatchUpsert(upsertCtx, records); err != nil {
		return stats, err
	}
	stats.Vectors = len(records)

	log.Printf("Indexed %s: %d pages, %d chunks, %d vectors", path, stats.Pages, stats.Chunks, stats.Vectors)
	return stats, nil
}

// Query embeds the query text and returns the nearest indexed chunks.
func (s *IndexService) Query(ctx context.Context, query string, limit int) ([]types.ScoredRecord, error) {
	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.upsertTimeout)
	defer cancel()
	return s.store.Search(searchCtx, vector, limit)
}

func (s *IndexService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	return s.embedder.EmbedTexts(embedCtx, texts)
}

func (s *IndexService) embedQuery(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	return s.embedder.EmbedText(embedCtx, text)
}
