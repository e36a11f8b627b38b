package model

// Excerpt is a retrieved source-text span with a relevance score.
// Excerpts are fetched fresh per request and never cached across claims.
type Excerpt struct {
	ChunkID     string  `json:"chunk_id"`               // Unique within any merged result set
	ScopeID     string  `json:"scope_id"`               // Source work
	Title       string  `json:"title,omitempty"`        // Work title, if known
	Text        string  `json:"text"`                   // The excerpt text
	Relevance   float64 `json:"relevance_score"`        // Similarity in [0,1], higher = better
	RerankScore float64 `json:"rerank_score,omitempty"` // Assigned by the merge/rerank step
}

// Chunk is one indexed span of source text, as stored in the evidence index
type Chunk struct {
	ChunkID string `json:"chunk_id"`
	ScopeID string `json:"scope_id"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text"`
}

// TemporalEvent is a dated occurrence parsed from source text.
// Year is 0 when no year could be parsed; such events are excluded from
// ordering checks but retained for display.
type TemporalEvent struct {
	Year        int    `json:"year"`
	Description string `json:"description"`
	ScopeID     string `json:"scope_id,omitempty"`
	ChunkID     string `json:"chunk_id,omitempty"` // Source excerpt
	RawDate     string `json:"raw_date,omitempty"` // Original date string
}

// ConsistencyReport is the advisory output of one consistency check.
// It never acts as a hard pass/fail outside confidence fusion.
type ConsistencyReport struct {
	Consistent bool            `json:"consistent"`
	Issues     []string        `json:"issues"`
	Timeline   []TemporalEvent `json:"timeline,omitempty"` // Year-sorted, display only
}

// LogicChecks holds the narrative-logic signals consumed by the confidence
// scorer. Nil booleans mean the signal was unavailable, which is distinct
// from a failed check.
type LogicChecks struct {
	TimelineConsistent  *bool    `json:"timeline_consistent"`
	CausallyCoherent    *bool    `json:"causally_coherent"`
	CharacterPlausible  *bool    `json:"character_plausible"`
	WorldRulesRespected *bool    `json:"world_rules_respected"`
	Issues              []string `json:"issues"`
}

// EvidenceCitation is one quoted passage backing an atomic-statement finding
type EvidenceCitation struct {
	ChunkID   string `json:"chunk_id"`
	Quote     string `json:"quote"`
	Reasoning string `json:"reasoning"`
}

// StatementFinding is the adjudicator's finding for one atomic statement
type StatementFinding struct {
	ID       string             `json:"id"`
	Text     string             `json:"text"`
	Verdict  StatementVerdict   `json:"verdict"`
	Evidence []EvidenceCitation `json:"evidence"`
}

// Adjudication is the parsed response of the forensic adjudication
// collaborator. Its confidence is advisory only and is superseded by the
// confidence scorer.
type Adjudication struct {
	Verdict          Verdict            `json:"verdict"`
	Confidence       float64            `json:"confidence"`
	AtomicStatements []StatementFinding `json:"atomic_statements"`
	NarrativeLogic   LogicChecks        `json:"narrative_logic_checks"`
	Rationale        string             `json:"rationale"`
	CriticalGaps     []string           `json:"critical_gaps"`
}
