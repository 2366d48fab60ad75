package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/ragkit/indexer-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	docs      []types.Document
	err       error
	loadCalls int
}

func (l *fakeLoader) Load(path string, req types.IngestRequest) ([]types.Document, error) {
	l.loadCalls++
	if l.err != nil {
		return nil, l.err
	}
	return l.docs, nil
}

type fakeEmbedder struct {
	dimensions int
	err        error
	embedCalls int
}

func (e *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.embedCalls++
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, e.dimensions)
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimensions() int { return e.dimensions }

type fakeStore struct {
	upsertCalls int
	ensureCalls int
	records     []types.IndexedRecord
	searchOut   []types.ScoredRecord
	err         error
}

func (s *fakeStore) EnsureIndex(ctx context.Context, dimensions int) error {
	s.ensureCalls++
	return s.err
}

func (s *fakeStore) Upsert(ctx context.Context, record *types.IndexedRecord) error {
	s.upsertCalls++
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *fakeStore) BatchUpsert(ctx context.Context, records []types.IndexedRecord) error {
	s.upsertCalls++
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *fakeStore) Search(ctx context.Context, vector []float32, limit int) ([]types.ScoredRecord, error) {
	return s.searchOut, s.err
}

func (s *fakeStore) Drop(ctx context.Context) error { return s.err }

func (s *fakeStore) Close(ctx context.Context) error { return nil }

func newTestPipeline(t *testing.T, loader *fakeLoader, embedder *fakeEmbedder, store *fakeStore) *IndexService {
	t.Helper()
	splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200})
	require.NoError(t, err)
	return NewIndexService(loader, splitter, embedder, store)
}

func TestIndexFile(t *testing.T) {
	loader := &fakeLoader{docs: []types.Document{
		{Content: "page one text", Metadata: types.DocumentMetadata{Source: "a.pdf", PageNum: 1, TotalPages: 2}},
		{Content: "page two text", Metadata: types.DocumentMetadata{Source: "a.pdf", PageNum: 2, TotalPages: 2}},
	}}
	embedder := &fakeEmbedder{dimensions: 4}
	store := &fakeStore{}

	pipeline := newTestPipeline(t, loader, embedder, store)
	stats, err := pipeline.IndexFile(context.Background(), "a.pdf", types.IngestRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Vectors)
	assert.Equal(t, 1, store.ensureCalls)
	require.Len(t, store.records, 2)
	assert.Equal(t, "page one text", store.records[0].Text)
	assert.Len(t, store.records[0].Vector, 4)
	assert.Equal(t, 1, store.records[0].Metadata.PageNum)
}

func TestIndexFile_SourceNotFound(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("%w: missing.pdf", types.ErrSourceNotFound)}
	embedder := &fakeEmbedder{dimensions: 4}
	store := &fakeStore{}

	pipeline := newTestPipeline(t, loader, embedder, store)
	_, err := pipeline.IndexFile(context.Background(), "missing.pdf", types.IngestRequest{})
	assert.ErrorIs(t, err, types.ErrSourceNotFound)

	// The failure aborts the run before the embedder or the store is touched.
	assert.Equal(t, 0, embedder.embedCalls)
	assert.Equal(t, 0, store.ensureCalls)
	assert.Equal(t, 0, store.upsertCalls)
}

func TestIndexFile_EmbedderFailureStopsWrites(t *testing.T) {
	loader := &fakeLoader{docs: []types.Document{{Content: "some page text"}}}
	embedder := &fakeEmbedder{dimensions: 4, err: fmt.Errorf("%w: connection refused", types.ErrEmbeddingService)}
	store := &fakeStore{}

	pipeline := newTestPipeline(t, loader, embedder, store)
	_, err := pipeline.IndexFile(context.Background(), "a.pdf", types.IngestRequest{})
	assert.ErrorIs(t, err, types.ErrEmbeddingService)
	assert.Equal(t, 0, store.upsertCalls)
}

func TestIndexFile_EmptyDocument(t *testing.T) {
	loader := &fakeLoader{docs: nil}
	embedder := &fakeEmbedder{dimensions: 4}
	store := &fakeStore{}

	pipeline := newTestPipeline(t, loader, embedder, store)
	stats, err := pipeline.IndexFile(context.Background(), "empty.pdf", types.IngestRequest{})
	require.NoError(t, err)
	assert.Equal(t, IndexStats{}, stats)
	assert.Equal(t, 0, embedder.embedCalls)
	assert.Equal(t, 0, store.upsertCalls)
}

func TestQuery(t *testing.T) {
	embedder := &fakeEmbedder{dimensions: 4}
	store := &fakeStore{searchOut: []types.ScoredRecord{
		{IndexedRecord: types.IndexedRecord{Text: "a match"}, Score: 0.92},
	}}

	pipeline := newTestPipeline(t, &fakeLoader{}, embedder, store)
	results, err := pipeline.Query(context.Background(), "what is in the corpus", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a match", results[0].Text)
	assert.Equal(t, 1, embedder.embedCalls)
}
