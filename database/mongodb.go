package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/ragkit/indexer-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const BATCH_SIZE = 200

// chunkRecord is the denormalized chunk document persisted for Atlas
// Vector Search. Keeping chunks in their own collection enables efficient
// $vectorSearch over the corpus.
type chunkRecord struct {
	ID         string    `bson:"_id"`
	Text       string    `bson:"text"`
	Title      string    `bson:"title"`
	Source     string    `bson:"source"`
	Page       int       `bson:"page"`
	TotalPages int       `bson:"total_pages"`
	StartIndex int       `bson:"start_index"`
	Tags       []string  `bson:"tags,omitempty"`
	Vector     []float32 `bson:"vector"`
	Score      float64   `bson:"score,omitempty"`
}

// MongoVectorStore writes indexed records into a MongoDB Atlas collection
// and searches them through an Atlas Vector Search index.
type MongoVectorStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	indexName  string
}

func NewMongoVectorStore(ctx context.Context, uri, database, collection, index string) (*MongoVectorStore, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetBSONOptions(
			&options.BSONOptions{
				ObjectIDAsHexString: true,
			},
		))
	if err != nil {
		return nil, classifyMongoErr(err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, classifyMongoErr(err)
	}

	return &MongoVectorStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		indexName:  index,
	}, nil
}

// EnsureIndex creates the vectorSearch index over the vector field if it
// does not exist yet. Atlas builds search indexes asynchronously, so a
// freshly created index may take a moment to become queryable.
func (s *MongoVectorStore) EnsureIndex(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: vector dimensions must be positive, got %d", types.ErrInvalidConfig, dimensions)
	}
	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: "vector"},
				{Key: "numDimensions", Value: dimensions},
				{Key: "similarity", Value: "cosine"},
			},
		}},
	}
	_, err := s.collection.SearchIndexes().CreateOne(ctx, mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(s.indexName).SetType("vectorSearch"),
	})
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate Index") || strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return classifyMongoErr(err)
	}
	log.Printf("Created vector search index %s (%d dimensions)", s.indexName, dimensions)
	return nil
}

// Upsert writes one record, replacing any previous record for the same
// chunk. The record id is derived from source, page and start offset, so
// re-indexing the same file overwrites instead of duplicating.
func (s *MongoVectorStore) Upsert(ctx context.Context, record *types.IndexedRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	doc := toChunkRecord(record)
	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return classifyMongoErr(err)
	}
	return nil
}

// BatchUpsert writes records in batches of BATCH_SIZE bulk replacements.
func (s *MongoVectorStore) BatchUpsert(ctx context.Context, records []types.IndexedRecord) error {
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

		models := make([]mongo.WriteModel, 0, end-i)
		for j := i; j < end; j++ {
			doc := toChunkRecord(&records[j])
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.D{{Key: "_id", Value: doc.ID}}).
				SetReplacement(doc).
				SetUpsert(true))
		}

		if _, err := s.collection.BulkWrite(ctx, models); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, classifyMongoErr(err))
		}
		log.Printf("Inserted batch %d-%d of %d records", i, end, total)
	}
	return nil
}

// Search runs a $vectorSearch aggregation and returns the nearest records
// with their similarity scores.
func (s *MongoVectorStore) Search(ctx context.Context, vector []float32, limit int) ([]types.ScoredRecord, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is required", types.ErrInvalidConfig)
	}
	if limit <= 0 {
		limit = 5
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.indexName},
			{Key: "path", Value: "vector"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: limit * 10},
			{Key: "limit", Value: limit},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classifyMongoErr(err)
	}
	defer cursor.Close(ctx)

	var docs []chunkRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongoErr(err)
	}

	results := make([]types.ScoredRecord, 0, len(docs))
	for _, doc := range docs {
		results = append(results, types.ScoredRecord{
			IndexedRecord: types.IndexedRecord{
				Text: doc.Text,
				Metadata: types.DocumentMetadata{
					Title:      doc.Title,
					Source:     doc.Source,
					PageNum:    doc.Page,
					TotalPages: doc.TotalPages,
					StartIndex: doc.StartIndex,
					Tags:       doc.Tags,
				},
				Vector: doc.Vector,
			},
			Score: doc.Score,
		})
	}
	return results, nil
}

// Drop removes the collection along with its search index.
func (s *MongoVectorStore) Drop(ctx context.Context) error {
	if err := s.collection.Drop(ctx); err != nil {
		return classifyMongoErr(err)
	}
	return nil
}

func (s *MongoVectorStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// validateRecord rejects malformed records locally, before any network call.
func validateRecord(record *types.IndexedRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is required", types.ErrInvalidConfig)
	}
	if record.Text == "" {
		return fmt.Errorf("%w: record text is required", types.ErrInvalidConfig)
	}
	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: record vector is required", types.ErrInvalidConfig)
	}
	return nil
}

// RecordID derives a stable identifier for a chunk from its source, page
// and start offset, making repeated upserts of the same chunk idempotent.
func RecordID(record *types.IndexedRecord) string {
	key := fmt.Sprintf("%s|%d|%d", record.Metadata.Source, record.Metadata.PageNum, record.Metadata.StartIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func toChunkRecord(record *types.IndexedRecord) chunkRecord {
	return chunkRecord{
		ID:         RecordID(record),
		Text:       record.Text,
		Title:      record.Metadata.Title,
		Source:     record.Metadata.Source,
		Page:       record.Metadata.PageNum,
		TotalPages: record.Metadata.TotalPages,
		StartIndex: record.Metadata.StartIndex,
		Tags:       record.Metadata.Tags,
		Vector:     record.Vector,
	}
}

// classifyMongoErr maps driver errors onto the pipeline error taxonomy.
func classifyMongoErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "credential") {
		return fmt.Errorf("%w: %v", types.ErrStoreAuth, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || strings.Contains(msg, "server selection") {
		return fmt.Errorf("%w: %v", types.ErrStoreConnection, err)
	}
	return err
}
