package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/canonist/canonist/internal/model"
)

// Queryer is the slice of a pgx pool the store needs
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgVectorStore implements EvidenceSearch and ChunkSource against a
// Postgres database with the pgvector extension. Chunk embeddings are
// written by the ingestion side; this store only reads.
type PgVectorStore struct {
	q        Queryer
	embedder Embedder
}

// NewPgVectorStore creates a store over the given connection
func NewPgVectorStore(q Queryer, embedder Embedder) *PgVectorStore {
	return &PgVectorStore{q: q, embedder: embedder}
}

// Search embeds the query and returns the closest chunks, relevance
// descending. Scope, when non-empty, restricts results to one work.
func (s *PgVectorStore) Search(ctx context.Context, query, scope string, limit int) ([]model.Excerpt, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	args := []any{vectorLiteral(vec), limit}
	filterSQL := ""
	if scope != "" {
		filterSQL = " AND c.scope_id = $3"
		args = append(args, scope)
	}

	sql := `
SELECT c.chunk_id,
       c.scope_id,
       COALESCE(c.title, '') AS title,
       c.text,
       1 - (c.embedding <=> $1::vector) AS relevance
FROM chunks c
WHERE c.embedding IS NOT NULL` + filterSQL + `
ORDER BY c.embedding <=> $1::vector
LIMIT $2`

	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query evidence index: %w", err)
	}
	defer rows.Close()

	excerpts := make([]model.Excerpt, 0, limit)
	for rows.Next() {
		var e model.Excerpt
		if err := rows.Scan(&e.ChunkID, &e.ScopeID, &e.Title, &e.Text, &e.Relevance); err != nil {
			return nil, fmt.Errorf("scan excerpt: %w", err)
		}
		excerpts = append(excerpts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate excerpts: %w", err)
	}
	return excerpts, nil
}

// ListChunks returns every indexed chunk of a scope, in chunk order
func (s *PgVectorStore) ListChunks(ctx context.Context, scope string) ([]model.Chunk, error) {
	sql := `
SELECT c.chunk_id, c.scope_id, COALESCE(c.title, '') AS title, c.text
FROM chunks c
WHERE c.scope_id = $1
ORDER BY c.chunk_id`

	rows, err := s.q.Query(ctx, sql, scope)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ChunkID, &c.ScopeID, &c.Title, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}

func vectorLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
