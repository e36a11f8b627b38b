// Package pipeline orchestrates single-claim verification: decomposition,
// fan-out retrieval, consistency checks, forensic adjudication, confidence
// scoring, and dossier assembly. Each claim completes with either a real
// dossier or the degraded NOT_DECIDABLE fallback, never a partial record.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/canonist/canonist/internal/adjudicate"
	"github.com/canonist/canonist/internal/consistency"
	"github.com/canonist/canonist/internal/dossier"
	"github.com/canonist/canonist/internal/memory"
	"github.com/canonist/canonist/internal/model"
	"github.com/canonist/canonist/internal/retrieve"
	"github.com/canonist/canonist/internal/score"
	"github.com/canonist/canonist/internal/search"
)

// Pipeline evaluates claims against an evidence index
type Pipeline struct {
	retriever  *retrieve.Retriever
	decomposer *adjudicate.Decomposer
	validator  *adjudicate.Validator
	checker    *consistency.Checker
	scorer     *score.Scorer
	builder    *dossier.Builder
	config     *model.Config
}

// New creates a pipeline over the given evidence index and (optional,
// frozen) narrative memory.
func New(cfg *model.Config, index search.EvidenceSearch, mem *memory.Memory) (*Pipeline, error) {
	provider, err := adjudicate.NewProvider(adjudicate.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	var decomposer *adjudicate.Decomposer
	var validator *adjudicate.Validator
	if provider != nil {
		decomposer = adjudicate.NewDecomposer(provider)
		validator = adjudicate.NewValidator(provider)
	}

	return &Pipeline{
		retriever:  retrieve.NewRetriever(index, mem, cfg.Retrieval),
		decomposer: decomposer,
		validator:  validator,
		checker:    consistency.NewChecker(mem, cfg.Consistency),
		scorer:     score.NewScorer(cfg.Scoring),
		builder:    dossier.NewBuilder(cfg.Output.DossierDir),
		config:     cfg,
	}, nil
}

// Builder exposes dossier persistence for callers that save results
func (p *Pipeline) Builder() *dossier.Builder {
	return p.builder
}

// Verify evaluates one case end to end. Empty claim text is the only hard
// failure; every external problem degrades into the fallback dossier.
func (p *Pipeline) Verify(ctx context.Context, c model.Case) (*model.Dossier, error) {
	if strings.TrimSpace(c.Claim) == "" {
		return nil, fmt.Errorf("claim text must not be empty")
	}

	started := time.Now()
	claim := model.Claim{Text: c.Claim, ScopeID: c.ScopeID}

	// 1. Decompose into atomic statements and entities. Both collaborators
	// are optional and fall back rather than fail.
	statements := p.decompose(ctx, c.Claim)
	entities := p.extractEntities(ctx, c.Claim)

	// 2. Fan-out retrieval. An empty result set is evidence absence, not
	// an error.
	excerpts, err := p.retriever.Retrieve(ctx, c.Claim, c.ScopeID, statements, entities, p.config.Retrieval.ResultCount)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}

	// 3. Local consistency checks over the retrieved evidence
	events := consistency.ExtractEvents(excerpts)
	timelineReport := p.checker.CheckTimeline(events)
	causalReport := p.checker.CheckCausalCoherence(c.Claim, excerpts)
	worldReport := p.checker.CheckWorldRules(c.Claim, concatText(excerpts))
	charPlausible, charIssues := p.checkCharacters(entities)

	// 4. Forensic adjudication, degraded on any failure
	adj, degraded := p.adjudicate(ctx, c.Claim, statements, excerpts)

	confidence := 0.0
	if !degraded {
		// 5. Merge local signals into the adjudicator's checks: local
		// results fill gaps the adjudicator left null, and local issues
		// are appended. The degraded fallback keeps its signals null and
		// its confidence at zero.
		mergeLogicChecks(&adj.NarrativeLogic, timelineReport, causalReport, worldReport)
		if adj.NarrativeLogic.CharacterPlausible == nil {
			adj.NarrativeLogic.CharacterPlausible = charPlausible
		}
		adj.NarrativeLogic.Issues = append(adj.NarrativeLogic.Issues, charIssues...)

		// 6. Calibrated confidence supersedes the adjudicator's advisory value
		confidence = p.scorer.Confidence(adj.Verdict, statementVerdicts(adj), relevances(excerpts), adj.NarrativeLogic)
	}

	metadata := map[string]string{
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}
	if p.validator != nil {
		metadata["llm_provider"] = p.config.LLM.Provider
		metadata["llm_model"] = p.config.LLM.Model
	}

	return p.builder.Assemble(c.ID, claim, statements, adj, confidence, excerpts, metadata), nil
}

func (p *Pipeline) decompose(ctx context.Context, claim string) []model.AtomicStatement {
	if p.decomposer == nil {
		return adjudicate.WholeClaimFallback(claim)
	}
	statements, err := p.decomposer.Decompose(ctx, claim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: claim decomposition failed, using whole claim: %v\n", err)
		return adjudicate.WholeClaimFallback(claim)
	}
	return statements
}

func (p *Pipeline) extractEntities(ctx context.Context, claim string) model.Entities {
	if p.decomposer == nil {
		return model.Entities{}
	}
	entities, err := p.decomposer.Entities(ctx, claim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: entity extraction failed: %v\n", err)
		return model.Entities{}
	}
	return entities
}

// checkCharacters folds per-character plausibility into one advisory
// signal: nil without narrative memory, otherwise the conjunction over
// all claimed characters, with unknown-character notes as issues.
func (p *Pipeline) checkCharacters(entities model.Entities) (*bool, []string) {
	if len(entities.Characters) == 0 {
		return nil, nil
	}

	var combined *bool
	var issues []string
	for _, name := range entities.Characters {
		plausible, note := p.checker.CheckCharacterPlausibility(name)
		if plausible == nil {
			continue
		}
		if combined == nil {
			v := true
			combined = &v
		}
		if !*plausible {
			*combined = false
		}
		if strings.HasPrefix(note, "no information") {
			issues = append(issues, note)
		}
	}
	return combined, issues
}

func (p *Pipeline) adjudicate(ctx context.Context, claim string, statements []model.AtomicStatement, excerpts []model.Excerpt) (*model.Adjudication, bool) {
	if p.validator == nil {
		return adjudicate.Fallback("no adjudication provider configured"), true
	}
	adj, err := p.validator.Validate(ctx, claim, statements, excerpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: adjudication failed: %v\n", err)
		return adjudicate.Fallback(err.Error()), true
	}
	return adj, false
}

// mergeLogicChecks fills nil adjudicator signals from the local checkers
// and appends their issues.
func mergeLogicChecks(logic *model.LogicChecks, timeline, causal, world model.ConsistencyReport) {
	if logic.TimelineConsistent == nil {
		v := timeline.Consistent
		logic.TimelineConsistent = &v
	}
	if logic.CausallyCoherent == nil {
		v := causal.Consistent
		logic.CausallyCoherent = &v
	}
	if logic.WorldRulesRespected == nil {
		v := world.Consistent
		logic.WorldRulesRespected = &v
	}
	logic.Issues = append(logic.Issues, timeline.Issues...)
	logic.Issues = append(logic.Issues, causal.Issues...)
	logic.Issues = append(logic.Issues, world.Issues...)
}

func statementVerdicts(adj *model.Adjudication) []model.StatementVerdict {
	verdicts := make([]model.StatementVerdict, 0, len(adj.AtomicStatements))
	for _, finding := range adj.AtomicStatements {
		verdicts = append(verdicts, finding.Verdict)
	}
	return verdicts
}

func relevances(excerpts []model.Excerpt) []float64 {
	out := make([]float64, 0, len(excerpts))
	for _, e := range excerpts {
		out = append(out, e.Relevance)
	}
	return out
}

func concatText(excerpts []model.Excerpt) string {
	var b strings.Builder
	for _, e := range excerpts {
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	return b.String()
}
