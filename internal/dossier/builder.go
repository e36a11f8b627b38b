// Package dossier assembles verification outcomes into immutable records,
// persists them as JSON, and aggregates batch statistics. It never
// generates or edits prose: rationales are passed through unmodified.
package dossier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/canonist/canonist/internal/model"
)

// Builder assembles and persists dossiers
type Builder struct {
	dir string
}

// NewBuilder creates a builder writing under dir
func NewBuilder(dir string) *Builder {
	return &Builder{dir: dir}
}

// Assemble packages a verification outcome into a dossier. Statement
// verdicts from the adjudication are stamped onto the claim's atomic
// statements here, the single point where they are assigned.
func (b *Builder) Assemble(
	caseID string,
	claim model.Claim,
	statements []model.AtomicStatement,
	adjudication *model.Adjudication,
	confidence float64,
	excerpts []model.Excerpt,
	metadata map[string]string,
) *model.Dossier {
	verdicts := make(map[string]model.StatementVerdict, len(adjudication.AtomicStatements))
	for _, finding := range adjudication.AtomicStatements {
		verdicts[finding.ID] = finding.Verdict
	}

	stamped := make([]model.AtomicStatement, len(statements))
	copy(stamped, statements)
	for i := range stamped {
		if v, ok := verdicts[stamped[i].ID]; ok {
			stamped[i].Verdict = v
		}
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	return &model.Dossier{
		CaseID:    caseID,
		Timestamp: time.Now().UTC(),
		Claim: model.DossierClaim{
			Original:         claim.Text,
			ScopeID:          claim.ScopeID,
			AtomicStatements: stamped,
		},
		Verdict: model.DossierVerdict{
			Decision:   adjudication.Verdict,
			Confidence: confidence,
			Rationale:  adjudication.Rationale,
		},
		Evidence: model.DossierEvidence{
			Excerpts:       excerpts,
			TotalRetrieved: len(excerpts),
			AvgRelevance:   avgRelevance(excerpts),
		},
		Analysis: model.DossierAnalysis{
			AtomicVerdicts: adjudication.AtomicStatements,
			NarrativeLogic: adjudication.NarrativeLogic,
			CriticalGaps:   adjudication.CriticalGaps,
		},
		Metadata: metadata,
	}
}

// Save writes the dossier as <case_id>.json and returns the path
func (b *Builder) Save(d *model.Dossier) (string, error) {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", fmt.Errorf("create dossier directory: %w", err)
	}

	path := filepath.Join(b.dir, d.CaseID+".json")
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dossier: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write dossier: %w", err)
	}
	return path, nil
}

// Load reads a previously saved dossier
func (b *Builder) Load(caseID string) (*model.Dossier, error) {
	path := filepath.Join(b.dir, caseID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dossier: %w", err)
	}

	var d model.Dossier
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal dossier: %w", err)
	}
	return &d, nil
}

// SavePredictions writes the minimal prediction records for a batch
func (b *Builder) SavePredictions(predictions []model.Prediction, filename string) (string, error) {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", fmt.Errorf("create dossier directory: %w", err)
	}

	path := filepath.Join(b.dir, filename)
	data, err := json.MarshalIndent(predictions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal predictions: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write predictions: %w", err)
	}
	return path, nil
}

// Summarize aggregates verdict distribution, confidence statistics, and
// evidence volume over a batch of dossiers.
func Summarize(dossiers []*model.Dossier) model.BatchSummary {
	summary := model.BatchSummary{
		TotalCases: len(dossiers),
		VerdictDistribution: map[model.Verdict]int{
			model.VerdictSupported:    0,
			model.VerdictContradicted: 0,
			model.VerdictNotDecidable: 0,
		},
	}
	if len(dossiers) == 0 {
		return summary
	}

	confidences := make([]float64, 0, len(dossiers))
	totalExcerpts := 0
	for _, d := range dossiers {
		summary.VerdictDistribution[d.Verdict.Decision]++
		confidences = append(confidences, d.Verdict.Confidence)
		totalExcerpts += d.Evidence.TotalRetrieved
	}

	sorted := make([]float64, len(confidences))
	copy(sorted, confidences)
	sort.Float64s(sorted)

	sum := 0.0
	for _, c := range confidences {
		sum += c
	}

	summary.Confidence = model.ConfidenceStats{
		Mean:   sum / float64(len(confidences)),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: sorted[len(sorted)/2],
	}
	summary.AvgExcerptsPerCase = float64(totalExcerpts) / float64(len(dossiers))
	return summary
}

func avgRelevance(excerpts []model.Excerpt) float64 {
	if len(excerpts) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, e := range excerpts {
		sum += e.Relevance
	}
	return sum / float64(len(excerpts))
}
