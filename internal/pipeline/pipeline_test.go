package pipeline

import (
	"context"
	"testing"

	"github.com/canonist/canonist/internal/memory"
	"github.com/canonist/canonist/internal/model"
)

// stubSearch returns a fixed excerpt list for every query
type stubSearch struct {
	excerpts []model.Excerpt
}

func (s *stubSearch) Search(ctx context.Context, query, scope string, limit int) ([]model.Excerpt, error) {
	return s.excerpts, nil
}

func newTestPipeline(t *testing.T, excerpts []model.Excerpt) *Pipeline {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.Output.DossierDir = t.TempDir()
	// No LLM provider configured: adjudication degrades to the fallback.
	cfg.LLM.Provider = ""

	p, err := New(cfg, &stubSearch{excerpts: excerpts}, nil)
	if err != nil {
		t.Fatalf("New pipeline failed: %v", err)
	}
	return p
}

func TestVerify_EmptyClaimRejected(t *testing.T) {
	p := newTestPipeline(t, nil)

	for _, claim := range []string{"", "   ", "\n\t"} {
		if _, err := p.Verify(context.Background(), model.Case{ID: "c", Claim: claim}); err == nil {
			t.Errorf("Expected error for empty claim %q", claim)
		}
	}
}

func TestVerify_FallbackDossierWithoutProvider(t *testing.T) {
	excerpts := []model.Excerpt{
		{ChunkID: "c1", ScopeID: "monte-cristo", Relevance: 0.9, Text: "The ship arrived in 1815."},
	}
	p := newTestPipeline(t, excerpts)

	d, err := p.Verify(context.Background(), model.Case{
		ID:      "case-001",
		ScopeID: "monte-cristo",
		Claim:   "The ship arrived in 1815",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if d.Verdict.Decision != model.VerdictNotDecidable {
		t.Errorf("Expected NOT_DECIDABLE fallback, got %q", d.Verdict.Decision)
	}
	if d.Verdict.Confidence != 0.0 {
		t.Errorf("Expected fallback confidence exactly 0.0, got %f", d.Verdict.Confidence)
	}
	if d.Verdict.Rationale != "System error during validation" {
		t.Errorf("Unexpected fallback rationale %q", d.Verdict.Rationale)
	}

	// Degraded adjudication keeps its consistency signals null: local check
	// results must not be merged in.
	logic := d.Analysis.NarrativeLogic
	if logic.TimelineConsistent != nil || logic.CausallyCoherent != nil || logic.WorldRulesRespected != nil {
		t.Error("Expected null consistency signals in the fallback dossier")
	}
}

func TestVerify_FallbackStillRecordsEvidence(t *testing.T) {
	excerpts := []model.Excerpt{
		{ChunkID: "c1", ScopeID: "s", Relevance: 0.8, Text: "some evidence text"},
		{ChunkID: "c2", ScopeID: "s", Relevance: 0.6, Text: "more evidence text"},
	}
	p := newTestPipeline(t, excerpts)

	d, err := p.Verify(context.Background(), model.Case{ID: "case-002", ScopeID: "s", Claim: "a claim"})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if d.Evidence.TotalRetrieved != 2 {
		t.Errorf("Expected retrieved evidence recorded, got %d", d.Evidence.TotalRetrieved)
	}
	if d.CaseID != "case-002" {
		t.Errorf("Expected case id preserved, got %q", d.CaseID)
	}
	if d.Claim.ScopeID != "s" {
		t.Errorf("Expected scope preserved, got %q", d.Claim.ScopeID)
	}
}

func TestVerify_WholeClaimStatementWithoutDecomposer(t *testing.T) {
	p := newTestPipeline(t, nil)

	d, err := p.Verify(context.Background(), model.Case{ID: "case-003", Claim: "an undecomposed claim"})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	statements := d.Claim.AtomicStatements
	if len(statements) != 1 || statements[0].Text != "an undecomposed claim" {
		t.Errorf("Expected whole-claim fallback statement, got %+v", statements)
	}
}

func TestVerify_RecordsDuration(t *testing.T) {
	p := newTestPipeline(t, nil)

	d, err := p.Verify(context.Background(), model.Case{ID: "case-004", Claim: "a claim"})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if d.Metadata["duration"] == "" {
		t.Error("Expected duration metadata")
	}
	if _, ok := d.Metadata["llm_provider"]; ok {
		t.Error("Expected no llm metadata without a provider")
	}
}

func TestCheckCharacters(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Output.DossierDir = t.TempDir()

	mem := memory.Build([]model.Chunk{
		{ChunkID: "c1", ScopeID: "s", Text: "Danglars watched the harbor in silence."},
	})

	p, err := New(cfg, &stubSearch{}, mem)
	if err != nil {
		t.Fatalf("New pipeline failed: %v", err)
	}

	// No characters claimed: no signal
	if signal, _ := p.checkCharacters(model.Entities{}); signal != nil {
		t.Error("Expected nil signal without character entities")
	}

	// Known character: plausible, no issues
	signal, issues := p.checkCharacters(model.Entities{Characters: []string{"Danglars"}})
	if signal == nil || !*signal {
		t.Error("Expected known character to yield a true signal")
	}
	if len(issues) != 0 {
		t.Errorf("Expected no issues for known character, got %v", issues)
	}

	// Unknown character: still plausible (weak signal) but noted
	signal, issues = p.checkCharacters(model.Entities{Characters: []string{"Phantom"}})
	if signal == nil || !*signal {
		t.Error("Expected unknown character to stay plausible")
	}
	if len(issues) != 1 {
		t.Errorf("Expected one unknown-character note, got %v", issues)
	}
}

func TestMergeLogicChecks(t *testing.T) {
	adjTrue := true
	logic := model.LogicChecks{
		TimelineConsistent: &adjTrue, // adjudicator already answered
		Issues:             []string{"adjudicator issue"},
	}

	timeline := model.ConsistencyReport{Consistent: false, Issues: []string{"timeline issue"}}
	causal := model.ConsistencyReport{Consistent: true, Issues: []string{}}
	world := model.ConsistencyReport{Consistent: false, Issues: []string{"world issue"}}

	mergeLogicChecks(&logic, timeline, causal, world)

	// Adjudicator's answer wins over the local check
	if logic.TimelineConsistent == nil || !*logic.TimelineConsistent {
		t.Error("Expected adjudicator's timeline signal preserved")
	}
	if logic.CausallyCoherent == nil || !*logic.CausallyCoherent {
		t.Error("Expected local causal signal to fill the gap")
	}
	if logic.WorldRulesRespected == nil || *logic.WorldRulesRespected {
		t.Error("Expected local world-rules failure to fill the gap")
	}
	if len(logic.Issues) != 3 {
		t.Errorf("Expected adjudicator + local issues appended, got %v", logic.Issues)
	}
}
