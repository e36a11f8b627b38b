package adjudicate

import (
	"context"
	"fmt"

	"github.com/canonist/canonist/internal/model"
)

const decompositionPrompt = `You are a precise claim analyzer. Decompose the given claim into atomic factual statements that can be independently verified.

Each atomic statement should:
1. Be a single, verifiable fact
2. Contain no conjunctions (and, or, but)
3. Be self-contained and clear
4. Be testable against source text

Claim: %s

Respond ONLY with a JSON object in this format:
{
  "atomic_statements": [
    {"id": "A1", "text": "statement text"},
    {"id": "A2", "text": "statement text"}
  ]
}`

const entityPrompt = `Extract key entities from this narrative claim:

Claim: %s

Identify:
- Characters (people names)
- Locations (places)
- Dates (temporal references)
- Events (actions, occurrences)

Respond ONLY with JSON:
{
  "characters": ["name1", "name2"],
  "locations": ["place1"],
  "dates": ["1829", "spring"],
  "events": ["escaped", "married"]
}`

// Decomposer is the claim-decomposition collaborator. It produces the
// atomic statements and entities once per claim; both are immutable
// afterwards.
type Decomposer struct {
	provider Provider
}

// NewDecomposer creates a decomposer over the given provider
func NewDecomposer(provider Provider) *Decomposer {
	return &Decomposer{provider: provider}
}

// Decompose splits a claim into atomic statements. Callers fall back to a
// single whole-claim statement on error.
func (d *Decomposer) Decompose(ctx context.Context, claim string) ([]model.AtomicStatement, error) {
	if d.provider == nil {
		return nil, fmt.Errorf("no decomposition provider configured")
	}

	raw, err := d.provider.Complete(ctx, CompletionRequest{
		Prompt:      fmt.Sprintf(decompositionPrompt, claim),
		MaxTokens:   2000,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("decomposition request: %w", err)
	}

	return ParseDecomposition(raw)
}

// Entities extracts the claim's key entities for targeted retrieval.
// Callers fall back to empty entities on error.
func (d *Decomposer) Entities(ctx context.Context, claim string) (model.Entities, error) {
	if d.provider == nil {
		return model.Entities{}, fmt.Errorf("no decomposition provider configured")
	}

	raw, err := d.provider.Complete(ctx, CompletionRequest{
		Prompt:      fmt.Sprintf(entityPrompt, claim),
		MaxTokens:   1000,
		Temperature: 0,
	})
	if err != nil {
		return model.Entities{}, fmt.Errorf("entity extraction request: %w", err)
	}

	return ParseEntities(raw)
}

// WholeClaimFallback treats the entire claim as one atomic statement,
// used when decomposition fails.
func WholeClaimFallback(claim string) []model.AtomicStatement {
	return []model.AtomicStatement{{ID: "A1", Text: claim}}
}
