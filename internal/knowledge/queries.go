package knowledge

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// UpsertDocumentParams carries the parameters for UpsertDocument.
type UpsertDocumentParams struct {
	ID        string
	Content   string
	Embedding pgvector.Vector
	Metadata  []byte
}

// SearchDocumentsParams carries the parameters for SearchDocuments.
type SearchDocumentsParams struct {
	QueryEmbedding pgvector.Vector
	FilterMetadata []byte // jsonb containment filter; "{}" or "null" matches all
	ResultLimit    int32
}

// SearchDocumentsRow is one row of a SearchDocuments result.
type SearchDocumentsRow struct {
	ID         string
	Content    string
	Metadata   []byte
	CreatedAt  time.Time
	Similarity float32
}

// Queries is the pgx-backed implementation of Querier.
// All SQL is parameterized; metadata filters are jsonb values produced by
// json.Marshal, never interpolated strings.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries creates a Queries instance over the given connection pool.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const upsertDocumentSQL = `
INSERT INTO documents (id, content, embedding, metadata, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE
SET content = EXCLUDED.content,
    embedding = EXCLUDED.embedding,
    metadata = EXCLUDED.metadata
`

// UpsertDocument inserts or updates a document.
func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error {
	_, err := q.pool.Exec(ctx, upsertDocumentSQL,
		arg.ID, arg.Content, arg.Embedding, arg.Metadata)
	return err
}

// searchDocumentsSQL orders by cosine distance; similarity = 1 - distance.
// The filter short-circuits to all rows when the jsonb filter is empty.
const searchDocumentsSQL = `
SELECT id, content, metadata, created_at,
       1 - (embedding <=> $1) AS similarity
FROM documents
WHERE ($2::jsonb IS NULL OR $2::jsonb = '{}'::jsonb OR metadata @> $2::jsonb)
ORDER BY embedding <=> $1
LIMIT $3
`

// SearchDocuments performs a vector similarity search with optional
// metadata filtering, ordered by descending similarity.
func (q *Queries) SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error) {
	rows, err := q.pool.Query(ctx, searchDocumentsSQL,
		arg.QueryEmbedding, arg.FilterMetadata, arg.ResultLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchDocumentsRow
	for rows.Next() {
		var row SearchDocumentsRow
		if err := rows.Scan(&row.ID, &row.Content, &row.Metadata, &row.CreatedAt, &row.Similarity); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

const countDocumentsSQL = `
SELECT count(*)
FROM documents
WHERE ($1::jsonb IS NULL OR $1::jsonb = '{}'::jsonb OR metadata @> $1::jsonb)
`

// CountDocuments counts documents matching the metadata filter.
func (q *Queries) CountDocuments(ctx context.Context, filterMetadata []byte) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, countDocumentsSQL, filterMetadata).Scan(&count)
	return count, err
}

// DeleteDocument deletes a document by ID.
func (q *Queries) DeleteDocument(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}
