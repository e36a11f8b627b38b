package model

import "time"

// Config is the complete canonist configuration
type Config struct {
	Search       SearchConfig      `yaml:"search"`
	Retrieval    RetrievalConfig   `yaml:"retrieval"`
	Consistency  ConsistencyConfig `yaml:"consistency"`
	Scoring      ScoringConfig     `yaml:"scoring"`
	LLM          LLMConfig         `yaml:"llm"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting"`
	Output       OutputConfig      `yaml:"output"`
}

// SearchConfig configures the evidence index connection and query embeddings
type SearchConfig struct {
	DatabaseURL    string        `yaml:"database_url"`    // Postgres DSN (pgvector)
	EmbeddingModel string        `yaml:"embedding_model"` // OpenAI embedding model name
	CacheTTL       time.Duration `yaml:"cache_ttl"`       // Query-embedding cache TTL
}

// RetrievalConfig configures fan-out retrieval and reranking
type RetrievalConfig struct {
	ResultCount       int           `yaml:"result_count"`        // Final merged budget
	EntityResults     int           `yaml:"entity_results"`      // Fixed per-entity query size
	TemporalWindow    int           `yaml:"temporal_window"`     // Events before/after a date anchor
	Parallelism       int           `yaml:"parallelism"`         // Concurrent fan-out queries
	RerankWeights     RerankWeights `yaml:"rerank_weights"`
	MinStatementHits  int           `yaml:"min_statement_hits"`  // Floor for per-statement queries
}

// RerankWeights are the linear rerank coefficients. Unexplained constants in
// the original system; kept configurable rather than inferring intent.
type RerankWeights struct {
	Relevance float64 `yaml:"relevance"`
	Overlap   float64 `yaml:"overlap"`
	Length    float64 `yaml:"length"`
}

// ConsistencyConfig configures the temporal/causal heuristics
type ConsistencyConfig struct {
	CausalGapYears    int `yaml:"causal_gap_years"`   // Proximity approximation for causal links
	AnachronismCutoff int `yaml:"anachronism_cutoff"` // Years before this flag modern vocabulary
}

// ScoringConfig configures confidence fusion
type ScoringConfig struct {
	AtomicWeight   float64 `yaml:"atomic_weight"`
	EvidenceWeight float64 `yaml:"evidence_weight"`
	LogicWeight    float64 `yaml:"logic_weight"`
}

// LLMConfig configures the forensic adjudication collaborator
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // Never serialized; from environment
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ConcurrencyConfig configures batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"` // Concurrent claim evaluations
}

// RateLimitConfig throttles calls to external endpoints
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig configures dossier persistence
type OutputConfig struct {
	DossierDir string `yaml:"dossier_dir"`
	Verbose    bool   `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			EmbeddingModel: "text-embedding-3-small",
			CacheTTL:       15 * time.Minute,
		},
		Retrieval: RetrievalConfig{
			ResultCount:      10,
			EntityResults:    2,
			TemporalWindow:   3,
			Parallelism:      8,
			MinStatementHits: 3,
			RerankWeights: RerankWeights{
				Relevance: 0.6,
				Overlap:   0.3,
				Length:    0.1,
			},
		},
		Consistency: ConsistencyConfig{
			CausalGapYears:    10,
			AnachronismCutoff: 1900,
		},
		Scoring: ScoringConfig{
			AtomicWeight:   0.5,
			EvidenceWeight: 0.3,
			LogicWeight:    0.2,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   60,
			MaxTokens: 4000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         5,
		},
		Output: OutputConfig{
			DossierDir: "./dossiers",
		},
	}
}
