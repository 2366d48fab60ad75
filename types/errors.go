package types

import "errors"

// Pipeline error taxonomy. Stages wrap these sentinels with fmt.Errorf("%w")
// so callers can classify failures with errors.Is while keeping the
// underlying cause in the message.
var (
	// ErrSourceNotFound is returned when the input file path does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrParseFailed is returned when the source file is unreadable or corrupt.
	ErrParseFailed = errors.New("failed to parse source file")

	// ErrInvalidConfig is returned for invalid pipeline configuration,
	// e.g. chunk overlap >= chunk size or a record missing its vector.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyInput is returned when an empty text is submitted for embedding.
	ErrEmptyInput = errors.New("empty input text")

	// ErrEmbeddingService is returned when the embedding service call fails.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrStoreConnection is returned when the vector store is unreachable.
	ErrStoreConnection = errors.New("vector store connection error")

	// ErrStoreAuth is returned on vector store credential failure.
	ErrStoreAuth = errors.New("vector store authentication error")
)
