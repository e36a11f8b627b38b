package adjudicate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/canonist/canonist/internal/model"
)

// fakeProvider returns a canned response and records the last request
type fakeProvider struct {
	response string
	err      error
	lastReq  CompletionRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	p.lastReq = req
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func TestValidator_Validate(t *testing.T) {
	provider := &fakeProvider{
		response: `{"verdict": "SUPPORTED", "confidence": 0.9,
			"atomic_statements": [{"id": "A1", "text": "fact", "verdict": "SUPPORTED", "evidence": []}],
			"rationale": "stated directly"}`,
	}
	v := NewValidator(provider)

	statements := []model.AtomicStatement{{ID: "A1", Text: "the prisoner escaped"}}
	excerpts := []model.Excerpt{
		{ChunkID: "c7", ScopeID: "monte-cristo", Relevance: 0.91, Text: "He slipped into the sea and escaped."},
	}

	adj, err := v.Validate(context.Background(), "the claim", statements, excerpts)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if adj.Verdict != model.VerdictSupported {
		t.Errorf("Expected SUPPORTED, got %q", adj.Verdict)
	}

	// The prompt must carry the statements and cited excerpt metadata.
	if !strings.Contains(provider.lastReq.Prompt, "A1: the prisoner escaped") {
		t.Error("Expected atomic statement in the prompt")
	}
	if !strings.Contains(provider.lastReq.Prompt, "Chunk ID: c7") {
		t.Error("Expected chunk id in the prompt")
	}
	if !strings.Contains(provider.lastReq.Prompt, "Work: monte-cristo") {
		t.Error("Expected scope used as work title fallback")
	}
	if provider.lastReq.Temperature != 0 {
		t.Errorf("Expected temperature 0 for forensic work, got %f", provider.lastReq.Temperature)
	}
	if provider.lastReq.System == "" {
		t.Error("Expected the forensic system prompt to be set")
	}
}

func TestValidator_ProviderError(t *testing.T) {
	v := NewValidator(&fakeProvider{err: fmt.Errorf("connection refused")})

	if _, err := v.Validate(context.Background(), "claim", nil, nil); err == nil {
		t.Error("Expected provider error to propagate")
	}
}

func TestValidator_UnparseableResponse(t *testing.T) {
	v := NewValidator(&fakeProvider{response: "I cannot answer in JSON, sorry."})

	if _, err := v.Validate(context.Background(), "claim", nil, nil); err == nil {
		t.Error("Expected parse error for prose response")
	}
}

func TestDecomposer_Decompose(t *testing.T) {
	provider := &fakeProvider{
		response: `{"atomic_statements": [{"id": "A1", "text": "first"}, {"id": "A2", "text": "second"}]}`,
	}
	d := NewDecomposer(provider)

	statements, err := d.Decompose(context.Background(), "a compound claim")
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(statements) != 2 {
		t.Errorf("Expected 2 statements, got %d", len(statements))
	}
	if !strings.Contains(provider.lastReq.Prompt, "a compound claim") {
		t.Error("Expected claim embedded in the prompt")
	}
}

func TestDecomposer_Entities(t *testing.T) {
	provider := &fakeProvider{
		response: `{"characters": ["Dantes"], "dates": ["1815"]}`,
	}
	d := NewDecomposer(provider)

	entities, err := d.Entities(context.Background(), "a claim about Dantes in 1815")
	if err != nil {
		t.Fatalf("Entities failed: %v", err)
	}
	if len(entities.Characters) != 1 || len(entities.Dates) != 1 {
		t.Errorf("Unexpected entities: %+v", entities)
	}
}
