package score

import (
	"math"
	"testing"

	"github.com/canonist/canonist/internal/model"
)

func newTestScorer() *Scorer {
	return NewScorer(model.DefaultConfig().Scoring)
}

func boolPtr(b bool) *bool { return &b }

func TestConfidence_AlwaysInRange(t *testing.T) {
	s := newTestScorer()

	verdicts := []model.Verdict{
		model.VerdictSupported, model.VerdictContradicted, model.VerdictNotDecidable,
	}
	atomicSets := [][]model.StatementVerdict{
		nil,
		{model.StatementSupported},
		{model.StatementContradicted},
		{model.StatementInsufficient, model.StatementSupported},
	}
	relevanceSets := [][]float64{
		nil,
		{0.1},
		{0.9, 0.85, 0.92},
		{1.0, 0.0, 0.5},
	}

	for _, v := range verdicts {
		for _, atomics := range atomicSets {
			for _, relevances := range relevanceSets {
				got := s.Confidence(v, atomics, relevances, model.LogicChecks{})
				if got < 0.0 || got > 1.0 {
					t.Errorf("Confidence(%s, %v, %v) = %f, out of [0,1]", v, atomics, relevances, got)
				}
			}
		}
	}
}

func TestEvidenceQuality_EmptyIsZero(t *testing.T) {
	s := newTestScorer()
	if got := s.evidenceQuality(nil); got != 0.0 {
		t.Errorf("Expected 0.0 for no evidence, got %f", got)
	}
}

func TestEvidenceQuality_SingleExcerpt(t *testing.T) {
	s := newTestScorer()

	// mean 0.9 * 0.6 + single-evidence consistency 0.8 * 0.3 + zero bonus
	got := s.evidenceQuality([]float64{0.9})
	if math.Abs(got-0.78) > 1e-9 {
		t.Errorf("Expected 0.78 for single 0.9 excerpt, got %f", got)
	}
}

func TestEvidenceQuality_QuantityBonusThreshold(t *testing.T) {
	s := newTestScorer()

	nine := make([]float64, 9)
	ten := make([]float64, 10)
	for i := range nine {
		nine[i] = 0.7
	}
	for i := range ten {
		ten[i] = 0.7
	}

	base := 0.7*0.6 + 1.0*0.3
	if got := s.evidenceQuality(nine); math.Abs(got-base) > 1e-9 {
		t.Errorf("Expected no quantity bonus below 10 excerpts, got %f", got)
	}
	if got := s.evidenceQuality(ten); math.Abs(got-(base+0.2*0.1)) > 1e-9 {
		t.Errorf("Expected capped quantity bonus at 10 excerpts, got %f", got)
	}
}

func TestEvidenceQuality_ConsistentScoresBeatScattered(t *testing.T) {
	s := newTestScorer()

	consistent := s.evidenceQuality([]float64{0.7, 0.7, 0.7})
	scattered := s.evidenceQuality([]float64{1.0, 0.7, 0.4})

	if consistent <= scattered {
		t.Errorf("Expected consistent scores (%f) to beat scattered (%f)", consistent, scattered)
	}
}

func TestAtomicConsistency_EmptyIsNeutral(t *testing.T) {
	s := newTestScorer()
	for _, v := range []model.Verdict{model.VerdictSupported, model.VerdictContradicted, model.VerdictNotDecidable} {
		if got := s.atomicConsistency(nil, v); got != 0.5 {
			t.Errorf("Expected 0.5 for empty verdicts under %s, got %f", v, got)
		}
	}
}

func TestAtomicConsistency_Alignment(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		verdict model.Verdict
		atomics []model.StatementVerdict
		want    float64
		desc    string
	}{
		{
			model.VerdictSupported,
			[]model.StatementVerdict{model.StatementSupported, model.StatementSupported},
			1.0,
			"all supported statements fully align with SUPPORTED",
		},
		{
			model.VerdictSupported,
			[]model.StatementVerdict{model.StatementSupported, model.StatementContradicted},
			0.5,
			"one contradicted statement halves SUPPORTED alignment",
		},
		{
			model.VerdictContradicted,
			[]model.StatementVerdict{model.StatementSupported, model.StatementContradicted},
			1.0,
			"any explicit contradiction fully aligns with CONTRADICTED",
		},
		{
			model.VerdictContradicted,
			[]model.StatementVerdict{model.StatementSupported, model.StatementInsufficient},
			0.3,
			"CONTRADICTED without an explicit contradiction is weak",
		},
		{
			model.VerdictNotDecidable,
			[]model.StatementVerdict{model.StatementInsufficient, model.StatementInsufficient},
			1.0,
			"all insufficient statements fully align with NOT_DECIDABLE",
		},
	}

	for _, tt := range tests {
		if got := s.atomicConsistency(tt.atomics, tt.verdict); got != tt.want {
			t.Errorf("%s: got %f, want %f", tt.desc, got, tt.want)
		}
	}
}

func TestNarrativeLogic_NoSignalsIsNeutral(t *testing.T) {
	s := newTestScorer()
	if got := s.narrativeLogic(model.LogicChecks{}); got != 0.5 {
		t.Errorf("Expected 0.5 with no available signals, got %f", got)
	}
}

func TestNarrativeLogic_PassRateAndPenalty(t *testing.T) {
	s := newTestScorer()

	allPass := model.LogicChecks{
		TimelineConsistent:  boolPtr(true),
		CausallyCoherent:    boolPtr(true),
		WorldRulesRespected: boolPtr(true),
	}
	if got := s.narrativeLogic(allPass); got != 1.0 {
		t.Errorf("Expected 1.0 for all passing signals, got %f", got)
	}

	withIssues := allPass
	withIssues.Issues = []string{"issue one", "issue two"}
	if got := s.narrativeLogic(withIssues); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Expected 0.8 with two issues, got %f", got)
	}

	manyIssues := allPass
	manyIssues.Issues = []string{"a", "b", "c", "d", "e"}
	if got := s.narrativeLogic(manyIssues); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("Expected issue penalty capped at 0.3, got %f", got)
	}
}

func TestConfidence_NotDecidableCappedAt07(t *testing.T) {
	s := newTestScorer()

	// Strong sub-scores under NOT_DECIDABLE must still be capped.
	got := s.Confidence(
		model.VerdictNotDecidable,
		[]model.StatementVerdict{model.StatementInsufficient},
		[]float64{0.95, 0.95, 0.95, 0.95, 0.95},
		model.LogicChecks{
			TimelineConsistent:  boolPtr(true),
			CausallyCoherent:    boolPtr(true),
			WorldRulesRespected: boolPtr(true),
		},
	)
	if got > 0.7 {
		t.Errorf("Expected NOT_DECIDABLE confidence capped at 0.7, got %f", got)
	}
}

func TestConfidence_ContradictionBoost(t *testing.T) {
	s := newTestScorer()

	relevances := []float64{0.8, 0.8}
	logic := model.LogicChecks{TimelineConsistent: boolPtr(true)}

	withContradiction := s.Confidence(
		model.VerdictContradicted,
		[]model.StatementVerdict{model.StatementContradicted},
		relevances, logic)
	withoutContradiction := s.Confidence(
		model.VerdictContradicted,
		[]model.StatementVerdict{model.StatementInsufficient},
		relevances, logic)

	if withContradiction <= withoutContradiction {
		t.Errorf("Expected explicit contradiction to raise confidence: %f vs %f",
			withContradiction, withoutContradiction)
	}
}

func TestConfidence_WeakSupportPenalized(t *testing.T) {
	s := newTestScorer()

	// Poor evidence and mixed statements produce a fused score below 0.6;
	// SUPPORTED then takes the 0.8 penalty.
	got := s.Confidence(
		model.VerdictSupported,
		[]model.StatementVerdict{model.StatementSupported, model.StatementContradicted},
		[]float64{0.2},
		model.LogicChecks{TimelineConsistent: boolPtr(false)},
	)

	atomic := 0.5
	evidence := 0.2*0.6 + 0.8*0.3
	logic := 0.0
	want := math.Round((0.5*atomic+0.3*evidence+0.2*logic)*0.8*1000) / 1000

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected weak-support penalty to apply: got %f, want %f", got, want)
	}
}

func TestConfidence_RoundedToThreeDecimals(t *testing.T) {
	s := newTestScorer()

	got := s.Confidence(
		model.VerdictSupported,
		[]model.StatementVerdict{model.StatementSupported, model.StatementSupported, model.StatementInsufficient},
		[]float64{0.71, 0.66, 0.83},
		model.LogicChecks{TimelineConsistent: boolPtr(true)},
	)

	if got != math.Round(got*1000)/1000 {
		t.Errorf("Expected confidence rounded to 3 decimals, got %v", got)
	}
}
