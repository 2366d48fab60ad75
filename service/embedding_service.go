package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragkit/indexer-be/types"
	"github.com/sashabaranov/go-openai"
)

// Embedder converts chunk text into fixed-length embedding vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the vector length of this embedder, 0 before the
	// first successful call if it was not configured up front.
	Dimensions() int
}

// OpenAIEmbeddingService calls an OpenAI-compatible embedding endpoint,
// typically a local model server.
type OpenAIEmbeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbeddingService creates an embedding service against baseURL.
// dimensions may be 0, in which case it is pinned on the first successful
// call and enforced afterwards.
func NewOpenAIEmbeddingService(baseURL, apiKey, model string, dimensions int) *OpenAIEmbeddingService {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL // Set this to your local embedding server URL
	client := openai.NewClientWithConfig(config)
	return &OpenAIEmbeddingService{
		client:     client,
		model:      model,
		dimensions: dimensions,
	}
}

func (s *OpenAIEmbeddingService) Dimensions() int {
	return s.dimensions
}

// EmbedText generates an embedding vector for a single text.
func (s *OpenAIEmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates embedding vectors for a batch of texts, in input
// order. Empty inputs are rejected before any network call.
func (s *OpenAIEmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", types.ErrEmptyInput)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text %d is empty", types.ErrEmptyInput, i)
		}
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingService, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d embeddings, got %d", types.ErrEmbeddingService, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if err := s.checkDimensions(len(data.Embedding)); err != nil {
			return nil, err
		}
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

// checkDimensions pins the vector length on first use and enforces it on
// every later vector from the same service instance.
func (s *OpenAIEmbeddingService) checkDimensions(got int) error {
	if got == 0 {
		return fmt.Errorf("%w: service returned an empty vector", types.ErrEmbeddingService)
	}
	if s.dimensions == 0 {
		s.dimensions = got
		return nil
	}
	if got != s.dimensions {
		return fmt.Errorf("%w: expected %d dimensions, got %d", types.ErrEmbeddingService, s.dimensions, got)
	}
	return nil
}
