// Package retrieve implements multi-strategy evidence retrieval: fan-out
// over claim, atomic-statement, entity, and temporal-anchor queries,
// followed by dedup, rerank, and truncation to the result budget.
package retrieve

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/canonist/canonist/internal/memory"
	"github.com/canonist/canonist/internal/model"
	"github.com/canonist/canonist/internal/search"
)

// Retriever issues fan-out queries against the evidence index and merges
// the results into one ranked, duplicate-free excerpt list.
type Retriever struct {
	search search.EvidenceSearch
	memory *memory.Memory // optional temporal-anchor collaborator
	cfg    model.RetrievalConfig
}

// NewRetriever creates a retriever. mem may be nil; the temporal-anchor
// strategy is skipped without it.
func NewRetriever(s search.EvidenceSearch, mem *memory.Memory, cfg model.RetrievalConfig) *Retriever {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 8
	}
	if cfg.EntityResults <= 0 {
		cfg.EntityResults = 2
	}
	if cfg.MinStatementHits <= 0 {
		cfg.MinStatementHits = 3
	}
	return &Retriever{search: s, memory: mem, cfg: cfg}
}

// query is one planned fan-out search
type query struct {
	text  string
	limit int
}

// Retrieve returns up to resultCount excerpts relevant to the claim,
// relevance-reranked and deduplicated by chunk id. A failing individual
// search is skipped; if every strategy fails or yields nothing the result
// is an empty list, which the caller treats as evidence absence, not an
// error. A non-positive resultCount is rejected before any call.
func (r *Retriever) Retrieve(
	ctx context.Context,
	claim, scope string,
	statements []model.AtomicStatement,
	entities model.Entities,
	resultCount int,
) ([]model.Excerpt, error) {
	if resultCount <= 0 {
		return nil, fmt.Errorf("result count must be positive, got %d", resultCount)
	}

	queries := r.plan(claim, statements, entities, resultCount)
	perQuery := r.fanOut(ctx, queries, scope)

	// Concatenate in plan order; occurrence order only decides which
	// duplicate keeps the slot, never the final ranking.
	var combined []model.Excerpt
	for _, results := range perQuery {
		combined = append(combined, results...)
	}

	unique := deduplicate(combined)
	ranked := r.rerank(unique, claim)

	if len(ranked) > resultCount {
		ranked = ranked[:resultCount]
	}
	return ranked, nil
}

// plan builds the fan-out query list: base claim, per-statement,
// per-entity, and per-temporal-anchor queries.
func (r *Retriever) plan(claim string, statements []model.AtomicStatement, entities model.Entities, resultCount int) []query {
	queries := []query{{text: claim, limit: resultCount}}

	if len(statements) > 0 {
		// Guarantees minimum per-statement coverage without exceeding the
		// budget as the statement count grows.
		perStatement := resultCount / len(statements)
		if perStatement < r.cfg.MinStatementHits {
			perStatement = r.cfg.MinStatementHits
		}
		for _, stmt := range statements {
			queries = append(queries, query{text: stmt.Text, limit: perStatement})
		}
	}

	for _, entity := range entities.Flatten() {
		queries = append(queries, query{text: entity, limit: r.cfg.EntityResults})
	}

	if r.memory != nil {
		for _, date := range entities.Dates {
			for _, event := range r.memory.TemporalContext(date, r.cfg.TemporalWindow) {
				queries = append(queries, query{text: event.Description, limit: 2})
			}
		}
	}

	return queries
}

// fanOut runs the planned queries concurrently (scatter/gather: the merge
// waits for all of them) and returns per-query results in plan order.
func (r *Retriever) fanOut(ctx context.Context, queries []query, scope string) [][]model.Excerpt {
	results := make([][]model.Excerpt, len(queries))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, r.cfg.Parallelism)

	for i, q := range queries {
		wg.Add(1)
		go func(idx int, q query) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			excerpts, err := r.search.Search(ctx, q.text, scope, q.limit)
			if err != nil {
				// One failing strategy is skipped, not fatal
				fmt.Fprintf(os.Stderr, "Warning: evidence search failed for %q: %v\n", truncate(q.text, 60), err)
				return
			}
			results[idx] = excerpts
		}(i, q)
	}

	wg.Wait()
	return results
}

// deduplicate removes repeated chunk ids; the first occurrence wins the slot
func deduplicate(excerpts []model.Excerpt) []model.Excerpt {
	seen := make(map[string]bool, len(excerpts))
	unique := make([]model.Excerpt, 0, len(excerpts))
	for _, e := range excerpts {
		if seen[e.ChunkID] {
			continue
		}
		seen[e.ChunkID] = true
		unique = append(unique, e)
	}
	return unique
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
