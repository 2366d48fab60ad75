package types

// Document is one logical unit of source text, typically a single PDF page.
// Documents are immutable once produced by the loader.
type Document struct {
	Content  string           // The actual text content
	Metadata DocumentMetadata // Associated metadata for the document
}

// DocumentChunk is a bounded sub-span of a Document's text. Consecutive
// chunks from the same parent overlap by the configured number of characters.
type DocumentChunk struct {
	Content  string           // The actual text content
	Metadata DocumentMetadata // Parent metadata plus this chunk's start offset
}

// DocumentMetadata contains metadata information for documents and chunks
type DocumentMetadata struct {
	Title      string   // Title of the source document
	Source     string   // Source file path
	PageNum    int      // Current page number
	TotalPages int      // Total number of pages in the document
	StartIndex int      // Character offset of a chunk within its parent page
	Tags       []string // Optional tags attached at ingestion time
}

// SplitterConfig contains configuration options for chunking
type SplitterConfig struct {
	ChunkSize    int // Maximum size for text chunks
	ChunkOverlap int // Size of overlap between consecutive chunks
}

// IndexedRecord is the unit persisted into the vector store: chunk text,
// its metadata and the embedding vector computed for it.
type IndexedRecord struct {
	Text     string
	Metadata DocumentMetadata
	Vector   []float32
}

// ScoredRecord is an IndexedRecord returned from a similarity search
// together with the store's relevance score.
type ScoredRecord struct {
	IndexedRecord
	Score float64
}

type IngestRequest struct {
	Title  string   `json:"title"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}
