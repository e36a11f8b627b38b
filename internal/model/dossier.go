package model

import "time"

// Dossier is the persisted structured outcome of one claim verification.
// Field names and nesting are a stable downstream contract; once assembled
// a dossier is an immutable historical record.
type Dossier struct {
	CaseID    string            `json:"case_id"`
	Timestamp time.Time         `json:"timestamp"`
	Claim     DossierClaim      `json:"claim"`
	Verdict   DossierVerdict    `json:"verdict"`
	Evidence  DossierEvidence   `json:"evidence"`
	Analysis  DossierAnalysis   `json:"analysis"`
	Metadata  map[string]string `json:"metadata"`
}

// DossierClaim records the claim as verified
type DossierClaim struct {
	Original         string            `json:"original"`
	ScopeID          string            `json:"scope_id"`
	AtomicStatements []AtomicStatement `json:"atomic_statements"`
}

// DossierVerdict records the decision, the calibrated confidence, and the
// externally produced rationale (passed through unmodified)
type DossierVerdict struct {
	Decision   Verdict `json:"decision"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// DossierEvidence records the merged excerpt set used for the decision
type DossierEvidence struct {
	Excerpts       []Excerpt `json:"excerpts"`
	TotalRetrieved int       `json:"total_retrieved"`
	AvgRelevance   float64   `json:"avg_relevance"`
}

// DossierAnalysis records the adjudicator's per-statement findings and the
// narrative-logic signals
type DossierAnalysis struct {
	AtomicVerdicts []StatementFinding `json:"atomic_verdicts"`
	NarrativeLogic LogicChecks        `json:"narrative_logic"`
	CriticalGaps   []string           `json:"critical_gaps"`
}

// Prediction is the minimal submission record for one case
type Prediction struct {
	ID         string  `json:"id"`
	Prediction Verdict `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// ConfidenceStats summarizes confidence scores across a batch
type ConfidenceStats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// BatchSummary aggregates statistics over a batch of dossiers
type BatchSummary struct {
	TotalCases          int             `json:"total_cases"`
	VerdictDistribution map[Verdict]int `json:"verdict_distribution"`
	Confidence          ConfidenceStats `json:"confidence_stats"`
	AvgExcerptsPerCase  float64         `json:"avg_excerpts_per_case"`
}
