package model

// Verdict is the final decision on a claim
type Verdict string

const (
	VerdictSupported    Verdict = "SUPPORTED"
	VerdictContradicted Verdict = "CONTRADICTED"
	VerdictNotDecidable Verdict = "NOT_DECIDABLE"
)

// StatementVerdict is the per-atomic-statement decision
type StatementVerdict string

const (
	StatementSupported    StatementVerdict = "SUPPORTED"
	StatementContradicted StatementVerdict = "CONTRADICTED"
	StatementInsufficient StatementVerdict = "INSUFFICIENT"
)

// Claim is a factual assertion about a narrative work, scoped to one source work.
// Immutable once created.
type Claim struct {
	Text    string `json:"text"`     // The claim text itself
	ScopeID string `json:"scope_id"` // Source work the claim is restricted to
}

// AtomicStatement is one independently verifiable clause extracted from a claim.
// The verdict is assigned exactly once, by the forensic adjudicator.
type AtomicStatement struct {
	ID      string           `json:"id"`                // e.g. "A1"
	Text    string           `json:"text"`              // Single verifiable fact
	Verdict StatementVerdict `json:"verdict,omitempty"` // Assigned after adjudication
}

// Case is one verification request, typically loaded from a cases file
type Case struct {
	ID      string `json:"id"`       // Unique case identifier
	ScopeID string `json:"scope_id"` // Source work
	Claim   string `json:"claim"`    // Statement to verify
}

// Entities are the key entities extracted from a claim for targeted retrieval
type Entities struct {
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	Dates      []string `json:"dates"`
	Events     []string `json:"events"`
}

// Flatten returns all entity strings in a fixed order (characters,
// locations, dates, events) so the fan-out query order is deterministic.
func (e Entities) Flatten() []string {
	out := make([]string, 0, len(e.Characters)+len(e.Locations)+len(e.Dates)+len(e.Events))
	out = append(out, e.Characters...)
	out = append(out, e.Locations...)
	out = append(out, e.Dates...)
	out = append(out, e.Events...)
	return out
}

// IsEmpty reports whether no entities were extracted
func (e Entities) IsEmpty() bool {
	return len(e.Characters) == 0 && len(e.Locations) == 0 &&
		len(e.Dates) == 0 && len(e.Events) == 0
}
