// Package score fuses atomic-statement verdicts, evidence quality, and
// narrative-logic signals into one calibrated confidence in [0,1].
package score

import (
	"math"

	"github.com/canonist/canonist/internal/model"
)

// Scorer calculates confidence scores for verdicts
type Scorer struct {
	atomicWeight   float64
	evidenceWeight float64
	logicWeight    float64
}

// NewScorer creates a scorer with the given fusion weights
func NewScorer(cfg model.ScoringConfig) *Scorer {
	return &Scorer{
		atomicWeight:   cfg.AtomicWeight,
		evidenceWeight: cfg.EvidenceWeight,
		logicWeight:    cfg.LogicWeight,
	}
}

// Confidence fuses the three sub-scores and applies verdict-conditional
// adjustments. The result is rounded to 3 decimals and is in [0,1] at
// every stage; NOT_DECIDABLE verdicts are capped at 0.7.
func (s *Scorer) Confidence(
	verdict model.Verdict,
	atomicVerdicts []model.StatementVerdict,
	evidenceRelevances []float64,
	logic model.LogicChecks,
) float64 {
	atomic := s.atomicConsistency(atomicVerdicts, verdict)
	evidence := s.evidenceQuality(evidenceRelevances)
	narrative := s.narrativeLogic(logic)

	fused := s.atomicWeight*atomic + s.evidenceWeight*evidence + s.logicWeight*narrative
	fused = clamp01(fused)

	adjusted := s.adjustForVerdict(fused, verdict, atomicVerdicts)

	return round3(clamp01(adjusted))
}

// atomicConsistency scores how well the atomic verdicts align with the
// final verdict. Empty verdict list is neutral (0.5) regardless of verdict.
func (s *Scorer) atomicConsistency(atomicVerdicts []model.StatementVerdict, finalVerdict model.Verdict) float64 {
	if len(atomicVerdicts) == 0 {
		return 0.5
	}

	scores := make([]float64, len(atomicVerdicts))
	for i, v := range atomicVerdicts {
		scores[i] = statementScore(v)
	}

	switch finalVerdict {
	case model.VerdictSupported:
		// Fraction of statements at least neutral
		count := 0
		for _, sc := range scores {
			if sc >= 0.5 {
				count++
			}
		}
		return float64(count) / float64(len(scores))

	case model.VerdictContradicted:
		// Any explicit contradiction is strong alignment
		for _, sc := range scores {
			if sc == 0.0 {
				return 1.0
			}
		}
		return 0.3

	default: // NOT_DECIDABLE
		// Fraction of statements that are exactly insufficient
		count := 0
		for _, sc := range scores {
			if sc == 0.5 {
				count++
			}
		}
		return float64(count) / float64(len(scores))
	}
}

// evidenceQuality scores the retrieved evidence: mean relevance, score
// consistency, and a quantity bonus. No evidence at all is exactly 0.0.
func (s *Scorer) evidenceQuality(relevances []float64) float64 {
	if len(relevances) == 0 {
		return 0.0
	}

	mean := 0.0
	for _, r := range relevances {
		mean += r
	}
	mean /= float64(len(relevances))

	consistency := 0.8 // single piece of evidence
	if len(relevances) > 1 {
		variance := 0.0
		for _, r := range relevances {
			variance += (r - mean) * (r - mean)
		}
		stddev := math.Sqrt(variance / float64(len(relevances)))
		consistency = 1.0 - math.Min(stddev, 0.3)/0.3
	}

	// Integer division: the bonus kicks in only at 10+ excerpts
	quantityBonus := math.Min(float64(len(relevances)/10), 0.2)

	return mean*0.6 + consistency*0.3 + quantityBonus*0.1
}

// narrativeLogic scores the fraction of available boolean signals that
// pass, minus an issue penalty. With zero available signals the score is
// neutral (0.5).
func (s *Scorer) narrativeLogic(logic model.LogicChecks) float64 {
	signals := []*bool{
		logic.TimelineConsistent,
		logic.CausallyCoherent,
		logic.CharacterPlausible,
		logic.WorldRulesRespected,
	}

	available := 0
	passed := 0
	for _, sig := range signals {
		if sig == nil {
			continue
		}
		available++
		if *sig {
			passed++
		}
	}

	if available == 0 {
		return 0.5
	}

	passRate := float64(passed) / float64(available)
	penalty := math.Min(float64(len(logic.Issues))*0.1, 0.3)

	return math.Max(0.0, passRate-penalty)
}

// adjustForVerdict applies conservative verdict-specific adjustments, in
// order: contradiction boost, NOT_DECIDABLE cap, weak-support penalty.
func (s *Scorer) adjustForVerdict(base float64, verdict model.Verdict, atomicVerdicts []model.StatementVerdict) float64 {
	switch verdict {
	case model.VerdictContradicted:
		for _, v := range atomicVerdicts {
			if v == model.StatementContradicted {
				return math.Min(base+0.1, 1.0)
			}
		}

	case model.VerdictNotDecidable:
		return math.Min(base, 0.7)

	case model.VerdictSupported:
		if base < 0.6 {
			return base * 0.8
		}
	}
	return base
}

func statementScore(v model.StatementVerdict) float64 {
	switch v {
	case model.StatementSupported:
		return 1.0
	case model.StatementContradicted:
		return 0.0
	case model.StatementInsufficient:
		return 0.5
	default:
		return 0.5
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
