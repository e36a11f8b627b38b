package adjudicate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/canonist/canonist/internal/model"
)

// stripFences removes a surrounding markdown code fence from an LLM
// response, if present.
func stripFences(s string) string {
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s)
}

// ParseAdjudication parses the forensic adjudicator's JSON response. An
// unparseable response is a recoverable error, never a crash.
func ParseAdjudication(raw string) (*model.Adjudication, error) {
	var adj model.Adjudication
	if err := json.Unmarshal([]byte(stripFences(raw)), &adj); err != nil {
		return nil, fmt.Errorf("parse adjudication response: %w", err)
	}

	switch adj.Verdict {
	case model.VerdictSupported, model.VerdictContradicted, model.VerdictNotDecidable:
	default:
		return nil, fmt.Errorf("parse adjudication response: unknown verdict %q", adj.Verdict)
	}

	return &adj, nil
}

type decompositionResponse struct {
	AtomicStatements []model.AtomicStatement `json:"atomic_statements"`
}

// ParseDecomposition parses the claim-decomposition JSON response
func ParseDecomposition(raw string) ([]model.AtomicStatement, error) {
	var resp decompositionResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("parse decomposition response: %w", err)
	}
	if len(resp.AtomicStatements) == 0 {
		return nil, fmt.Errorf("parse decomposition response: no atomic statements")
	}
	return resp.AtomicStatements, nil
}

// ParseEntities parses the entity-extraction JSON response
func ParseEntities(raw string) (model.Entities, error) {
	var entities model.Entities
	if err := json.Unmarshal([]byte(stripFences(raw)), &entities); err != nil {
		return model.Entities{}, fmt.Errorf("parse entities response: %w", err)
	}
	return entities, nil
}

// Fallback returns the degraded adjudication used when the collaborator is
// unavailable or its response cannot be parsed: NOT_DECIDABLE at zero
// confidence, all consistency signals null.
func Fallback(reason string) *model.Adjudication {
	return &model.Adjudication{
		Verdict:    model.VerdictNotDecidable,
		Confidence: 0.0,
		NarrativeLogic: model.LogicChecks{
			Issues: []string{reason},
		},
		Rationale:    "System error during validation",
		CriticalGaps: []string{"Unable to complete analysis"},
	}
}
