package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/canonist/canonist/internal/memory"
	"github.com/canonist/canonist/internal/model"
	"github.com/canonist/canonist/internal/pipeline"
	"github.com/canonist/canonist/internal/search"
)

var (
	scopeID      string
	caseID       string
	resultCount  int
	databaseURL  string
	dossierDir   string
	buildMemory  bool
	llmProvider  string
	llmModel     string
	embedModel   string
	verifyWait   time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim>",
	Short: "Verify a single claim against a narrative work",
	Long: `Verify evaluates one claim end to end:
- Decompose the claim into atomic statements and entities
- Retrieve evidence excerpts via fan-out search over the vector index
- Check temporal, causal, and world-rule consistency
- Adjudicate each atomic statement forensically against the excerpts
- Fuse the signals into a calibrated confidence and write a dossier

Example:
  canonist verify "Edmond Dantès escaped prison in 1829" --scope monte-cristo
  canonist verify "..." --scope moby-dick --llm-provider anthropic --results 15`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&scopeID, "scope", "", "source work the claim is restricted to")
	verifyCmd.Flags().StringVar(&caseID, "case-id", "", "case identifier (default: derived from timestamp)")
	verifyCmd.Flags().IntVar(&resultCount, "results", 10, "evidence excerpt budget")
	verifyCmd.Flags().StringVar(&databaseURL, "dsn", "", "Postgres DSN of the evidence index (or CANONIST_DATABASE_URL)")
	verifyCmd.Flags().StringVar(&dossierDir, "dossier-dir", "./dossiers", "output directory for dossiers")
	verifyCmd.Flags().BoolVar(&buildMemory, "memory", true, "build narrative memory for the scope before verifying")
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "anthropic", "LLM provider (openai, anthropic, ollama)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
	verifyCmd.Flags().StringVar(&embedModel, "embedding-model", "text-embedding-3-small", "embedding model for query vectors")
	verifyCmd.Flags().DurationVar(&verifyWait, "timeout", 5*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	claim := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), verifyWait)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, pool, err := buildPipeline(ctx, cfg, scopeID)
	if err != nil {
		return err
	}
	defer pool.Close()

	id := caseID
	if id == "" {
		id = fmt.Sprintf("case-%d", time.Now().Unix())
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying claim (scope=%s, results=%d)\n", scopeID, cfg.Retrieval.ResultCount)
	}

	dossier, err := p.Verify(ctx, model.Case{ID: id, ScopeID: scopeID, Claim: claim})
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	path, err := p.Builder().Save(dossier)
	if err != nil {
		return fmt.Errorf("save dossier: %w", err)
	}

	fmt.Printf("Verdict:    %s\n", dossier.Verdict.Decision)
	fmt.Printf("Confidence: %.3f\n", dossier.Verdict.Confidence)
	fmt.Printf("Evidence:   %d excerpts (avg relevance %.2f)\n",
		dossier.Evidence.TotalRetrieved, dossier.Evidence.AvgRelevance)
	if dossier.Verdict.Rationale != "" {
		fmt.Printf("Rationale:  %s\n", dossier.Verdict.Rationale)
	}
	fmt.Printf("Dossier:    %s\n", path)

	return nil
}

// buildConfig assembles the effective configuration from defaults, config
// file / environment (viper), and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.Retrieval.ResultCount = resultCount
	cfg.Output.DossierDir = dossierDir
	cfg.Output.Verbose = verbose
	cfg.Search.EmbeddingModel = embedModel

	cfg.Search.DatabaseURL = databaseURL
	if cfg.Search.DatabaseURL == "" {
		cfg.Search.DatabaseURL = os.Getenv("CANONIST_DATABASE_URL")
	}
	if cfg.Search.DatabaseURL == "" {
		return nil, fmt.Errorf("evidence index DSN required (--dsn or CANONIST_DATABASE_URL)")
	}

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

// buildPipeline connects to the evidence index, optionally builds narrative
// memory for the scope, and assembles the verification pipeline.
func buildPipeline(ctx context.Context, cfg *model.Config, scope string) (*pipeline.Pipeline, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.Search.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to evidence index: %w", err)
	}

	embedder, err := search.NewOpenAIEmbedder(
		os.Getenv("OPENAI_API_KEY"), "", cfg.Search.EmbeddingModel, cfg.Search.CacheTTL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	store := search.NewPgVectorStore(pool, embedder)

	// Narrative memory is built once here, before any verification starts,
	// then only read.
	var mem *memory.Memory
	if buildMemory && scope != "" {
		chunks, err := store.ListChunks(ctx, scope)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("load chunks for narrative memory: %w", err)
		}
		mem = memory.Build(chunks)
		if verbose {
			fmt.Fprintf(os.Stderr, "Built narrative memory: %d events, %d characters\n",
				len(mem.Timeline()), mem.CharacterCount())
		}
	}

	p, err := pipeline.New(cfg, store, mem)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return p, pool, nil
}
