// Package search defines the narrow interface to the external evidence
// index and provides a Postgres/pgvector implementation. The index itself
// (chunking, embedding computation, ANN structure) is an external
// collaborator; canonist only issues queries against it.
package search

import (
	"context"

	"github.com/canonist/canonist/internal/model"
)

// EvidenceSearch returns ranked excerpts for a query, ordered by relevance
// descending. Relevance is similarity (higher = better), not distance.
type EvidenceSearch interface {
	Search(ctx context.Context, query, scope string, limit int) ([]model.Excerpt, error)
}

// ChunkSource lists the indexed chunks of a scope, for narrative-memory
// construction.
type ChunkSource interface {
	ListChunks(ctx context.Context, scope string) ([]model.Chunk, error)
}
