package adjudicate

import (
	"context"
	"fmt"
	"strings"

	"github.com/canonist/canonist/internal/model"
)

// forensicSystemPrompt sets the adjudicator's protocol: verify each atomic
// statement strictly against the provided excerpts, never from outside
// knowledge, and answer in the fixed JSON shape.
const forensicSystemPrompt = `You are a canonical narrative forensic analyzer. You verify whether claims about narrative works align with, contradict, or cannot be determined from the source text. You reason like a legal expert examining evidence and never introduce external knowledge.

For each atomic statement decide:
- SUPPORTED: direct textual evidence exists; quote it and cite its chunk_id.
- CONTRADICTED: the text explicitly refutes the statement; quote the conflicting passage. Absence of evidence is NOT contradiction.
- INSUFFICIENT: neither supported nor contradicted; state what evidence is missing.

Then check narrative logic across the excerpts: timeline consistency, causal coherence, character plausibility, and world rules. Use null for any check you cannot assess.

Final verdict:
- SUPPORTED: all statements supported or reasonably inferable, no logic failures.
- CONTRADICTED: any statement has explicit contradictory evidence or a logic violation.
- NOT_DECIDABLE: insufficient or ambiguous evidence for key statements.

Respond ONLY with valid JSON:
{
  "verdict": "SUPPORTED | CONTRADICTED | NOT_DECIDABLE",
  "confidence": 0.0,
  "atomic_statements": [
    {"id": "A1", "text": "...", "verdict": "SUPPORTED | CONTRADICTED | INSUFFICIENT",
     "evidence": [{"chunk_id": "...", "quote": "...", "reasoning": "..."}]}
  ],
  "narrative_logic_checks": {
    "timeline_consistent": true,
    "causally_coherent": true,
    "character_plausible": true,
    "world_rules_respected": true,
    "issues": []
  },
  "rationale": "concise evidence-grounded explanation",
  "critical_gaps": ["what information would change the verdict"]
}`

// Validator is the forensic adjudication collaborator
type Validator struct {
	provider Provider
}

// NewValidator creates a validator over the given provider
func NewValidator(provider Provider) *Validator {
	return &Validator{provider: provider}
}

// Validate adjudicates the claim's atomic statements against the excerpts.
// The returned confidence is advisory only; the confidence scorer
// supersedes it.
func (v *Validator) Validate(
	ctx context.Context,
	claim string,
	statements []model.AtomicStatement,
	excerpts []model.Excerpt,
) (*model.Adjudication, error) {
	if v.provider == nil {
		return nil, fmt.Errorf("no adjudication provider configured")
	}

	prompt := fmt.Sprintf(`**Original Claim:**
%s

**Atomic Statements to Verify:**
%s

**Retrieved Excerpts from Source Text:**
%s

Analyze each atomic statement against the excerpts and provide your forensic verdict.`,
		claim, formatStatements(statements), formatExcerpts(excerpts))

	raw, err := v.provider.Complete(ctx, CompletionRequest{
		System:      forensicSystemPrompt,
		Prompt:      prompt,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("adjudication request: %w", err)
	}

	adj, err := ParseAdjudication(raw)
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func formatStatements(statements []model.AtomicStatement) string {
	lines := make([]string, 0, len(statements))
	for _, stmt := range statements {
		lines = append(lines, fmt.Sprintf("%s: %s", stmt.ID, stmt.Text))
	}
	return strings.Join(lines, "\n")
}

func formatExcerpts(excerpts []model.Excerpt) string {
	var b strings.Builder
	for i, ex := range excerpts {
		title := ex.Title
		if title == "" {
			title = ex.ScopeID
		}
		fmt.Fprintf(&b, `
[Excerpt %d]
Chunk ID: %s
Work: %s
Relevance: %.2f
Text: %s
---`, i+1, ex.ChunkID, title, ex.Relevance, ex.Text)
	}
	return b.String()
}
