package adjudicate

import (
	"strings"
	"testing"

	"github.com/canonist/canonist/internal/model"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
		desc string
	}{
		{`{"a": 1}`, `{"a": 1}`, "bare JSON untouched"},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`, "json fence stripped"},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`, "anonymous fence stripped"},
		{"Here is the result:\n```json\n{\"a\": 1}\n```\nDone.", `{"a": 1}`, "surrounding prose discarded"},
		{"  {\"a\": 1}  ", `{"a": 1}`, "whitespace trimmed"},
	}

	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestParseAdjudication_Valid(t *testing.T) {
	raw := `{
		"verdict": "SUPPORTED",
		"confidence": 0.85,
		"atomic_statements": [
			{"id": "A1", "text": "the fact", "verdict": "SUPPORTED",
			 "evidence": [{"chunk_id": "c1", "quote": "the text says so", "reasoning": "direct statement"}]}
		],
		"narrative_logic_checks": {
			"timeline_consistent": true,
			"causally_coherent": null,
			"character_plausible": null,
			"world_rules_respected": true,
			"issues": []
		},
		"rationale": "Directly described in chapter one.",
		"critical_gaps": []
	}`

	adj, err := ParseAdjudication(raw)
	if err != nil {
		t.Fatalf("ParseAdjudication failed: %v", err)
	}

	if adj.Verdict != model.VerdictSupported {
		t.Errorf("Expected SUPPORTED, got %q", adj.Verdict)
	}
	if len(adj.AtomicStatements) != 1 || adj.AtomicStatements[0].Verdict != model.StatementSupported {
		t.Errorf("Unexpected atomic statements: %+v", adj.AtomicStatements)
	}
	if adj.NarrativeLogic.TimelineConsistent == nil || !*adj.NarrativeLogic.TimelineConsistent {
		t.Error("Expected timeline signal true")
	}
	if adj.NarrativeLogic.CausallyCoherent != nil {
		t.Error("Expected null causal signal to stay nil")
	}
}

func TestParseAdjudication_Fenced(t *testing.T) {
	raw := "```json\n{\"verdict\": \"NOT_DECIDABLE\", \"confidence\": 0.4, \"rationale\": \"no evidence\"}\n```"

	adj, err := ParseAdjudication(raw)
	if err != nil {
		t.Fatalf("ParseAdjudication failed: %v", err)
	}
	if adj.Verdict != model.VerdictNotDecidable {
		t.Errorf("Expected NOT_DECIDABLE, got %q", adj.Verdict)
	}
}

func TestParseAdjudication_Invalid(t *testing.T) {
	if _, err := ParseAdjudication("this is not JSON at all"); err == nil {
		t.Error("Expected error for non-JSON response")
	}
	if _, err := ParseAdjudication(`{"verdict": "MAYBE", "confidence": 0.5}`); err == nil {
		t.Error("Expected error for unknown verdict")
	}
}

func TestParseDecomposition(t *testing.T) {
	raw := `{"atomic_statements": [
		{"id": "A1", "text": "first fact"},
		{"id": "A2", "text": "second fact"}
	]}`

	statements, err := ParseDecomposition(raw)
	if err != nil {
		t.Fatalf("ParseDecomposition failed: %v", err)
	}
	if len(statements) != 2 || statements[0].ID != "A1" {
		t.Errorf("Unexpected statements: %+v", statements)
	}

	if _, err := ParseDecomposition(`{"atomic_statements": []}`); err == nil {
		t.Error("Expected error for empty decomposition")
	}
}

func TestParseEntities(t *testing.T) {
	raw := `{"characters": ["Dantes"], "locations": [], "dates": ["1815"], "events": []}`

	entities, err := ParseEntities(raw)
	if err != nil {
		t.Fatalf("ParseEntities failed: %v", err)
	}
	if len(entities.Characters) != 1 || entities.Characters[0] != "Dantes" {
		t.Errorf("Unexpected characters: %v", entities.Characters)
	}
	if len(entities.Dates) != 1 {
		t.Errorf("Unexpected dates: %v", entities.Dates)
	}
}

func TestFallback(t *testing.T) {
	adj := Fallback("provider timed out")

	if adj.Verdict != model.VerdictNotDecidable {
		t.Errorf("Expected NOT_DECIDABLE, got %q", adj.Verdict)
	}
	if adj.Confidence != 0.0 {
		t.Errorf("Expected zero confidence, got %f", adj.Confidence)
	}
	if adj.Rationale != "System error during validation" {
		t.Errorf("Unexpected rationale %q", adj.Rationale)
	}
	if adj.NarrativeLogic.TimelineConsistent != nil ||
		adj.NarrativeLogic.CausallyCoherent != nil ||
		adj.NarrativeLogic.CharacterPlausible != nil ||
		adj.NarrativeLogic.WorldRulesRespected != nil {
		t.Error("Expected all consistency signals null in the fallback")
	}
	if len(adj.NarrativeLogic.Issues) != 1 || !strings.Contains(adj.NarrativeLogic.Issues[0], "timed out") {
		t.Errorf("Expected the reason recorded as an issue, got %v", adj.NarrativeLogic.Issues)
	}
}

func TestWholeClaimFallback(t *testing.T) {
	statements := WholeClaimFallback("the entire claim")
	if len(statements) != 1 {
		t.Fatalf("Expected one statement, got %d", len(statements))
	}
	if statements[0].ID != "A1" || statements[0].Text != "the entire claim" {
		t.Errorf("Unexpected fallback statement: %+v", statements[0])
	}
}
