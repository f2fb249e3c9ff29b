// Package knowledge manages the vector knowledge base backing retrieval.
//
// Documents are embedded with the configured Genkit embedder and stored in
// PostgreSQL with pgvector. Search is cosine-similarity ordered, optionally
// filtered by jsonb metadata (collection, source type).
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"
)

// Querier defines the database operations the Store needs.
// The interface is defined by the consumer so tests can inject a fake;
// Queries is the pgx-backed production implementation.
type Querier interface {
	UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error
	SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error)
	CountDocuments(ctx context.Context, filterMetadata []byte) (int64, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Store manages knowledge documents with vector search capabilities.
// It handles embedding generation and similarity search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a new Store instance.
func New(querier Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// Add adds a document to the knowledge store.
// The document's content is embedded with the configured embedder; the
// write is an upsert so re-indexing the same document is safe.
func (s *Store) Add(ctx context.Context, doc Document) error {
	embedding, err := s.embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embedding document %q: %w", doc.ID, err)
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	err = s.queries.UpsertDocument(ctx, UpsertDocumentParams{
		ID:        doc.ID,
		Content:   doc.Content,
		Embedding: pgvector.NewVector(embedding),
		Metadata:  metadataJSON,
	})
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.ID, err)
	}

	s.logger.Debug("added document", "id", doc.ID, "content_length", len(doc.Content))
	return nil
}

// Search performs semantic search on the knowledge store.
// It returns the most similar documents to the query, ordered by descending
// similarity, at most topK results. An empty result is not an error.
//
// Example:
//
//	results, err := store.Search(ctx, "karma yoga",
//	    knowledge.WithTopK(3),
//	    knowledge.WithFilter("collection", "krishna_knowledge"))
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	embedding, err := s.embed(queryCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query embedding timeout: %w", err)
		}
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	filterJSON, err := json.Marshal(cfg.filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}

	rows, err := s.queries.SearchDocuments(queryCtx, SearchDocumentsParams{
		QueryEmbedding: pgvector.NewVector(embedding),
		FilterMetadata: filterJSON,
		ResultLimit:    cfg.topK,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("searching documents: %w", err)
	}

	return s.rowsToResults(rows), nil
}

// Count returns the number of documents matching the given filter.
// A nil or empty filter counts all documents.
func (s *Store) Count(ctx context.Context, filter map[string]string) (int64, error) {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return 0, fmt.Errorf("marshaling filter: %w", err)
	}

	count, err := s.queries.CountDocuments(ctx, filterJSON)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Delete removes a document from the knowledge store.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if err := s.queries.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("deleting document %q: %w", docID, err)
	}

	s.logger.Debug("deleted document", "id", docID)
	return nil
}

// embed generates a single embedding vector for the given text.
func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, errors.New("embedder returned an empty embedding")
	}
	return resp.Embeddings[0].Embedding, nil
}

// rowsToResults converts database rows to business model Results.
func (s *Store) rowsToResults(rows []SearchDocumentsRow) []Result {
	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		var metadata map[string]string
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			s.logger.Warn("failed to parse metadata", "document_id", row.ID, "error", err)
			metadata = make(map[string]string)
		}

		results = append(results, Result{
			Document: Document{
				ID:        row.ID,
				Content:   row.Content,
				Metadata:  metadata,
				CreatedAt: row.CreatedAt,
			},
			Similarity: row.Similarity,
		})
	}
	return results
}
