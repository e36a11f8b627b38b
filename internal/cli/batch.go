package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonist/canonist/internal/dossier"
	"github.com/canonist/canonist/internal/model"
	"github.com/canonist/canonist/internal/worker"
)

var (
	batchScope       string
	batchWorkers     int
	batchRate        float64
	batchBurst       int
	batchPredictions string
	batchWait        time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <cases-file>",
	Short: "Verify a file of claims concurrently",
	Long: `Batch verifies a JSON-lines file of cases, one object per line:

  {"id": "case-001", "scope_id": "monte-cristo", "claim": "..."}

Blank lines and # comments are skipped, duplicate case ids keep the
first occurrence. Each case produces its own dossier; a predictions
file and a batch summary are written at the end.

Example:
  canonist batch cases.jsonl --scope monte-cristo --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchScope, "scope", "", "source work shared by all cases (per-case scope_id wins)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "number of concurrent verifications")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 2.0, "LLM requests per second across all workers")
	batchCmd.Flags().IntVar(&batchBurst, "burst", 5, "LLM request burst size")
	batchCmd.Flags().StringVar(&batchPredictions, "predictions", "predictions.json", "predictions filename under the dossier directory")
	batchCmd.Flags().StringVar(&databaseURL, "dsn", "", "Postgres DSN of the evidence index (or CANONIST_DATABASE_URL)")
	batchCmd.Flags().StringVar(&dossierDir, "dossier-dir", "./dossiers", "output directory for dossiers")
	batchCmd.Flags().BoolVar(&buildMemory, "memory", true, "build narrative memory for the scope before verifying")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "anthropic", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
	batchCmd.Flags().StringVar(&embedModel, "embedding-model", "text-embedding-3-small", "embedding model for query vectors")
	batchCmd.Flags().IntVar(&resultCount, "results", 10, "evidence excerpt budget per case")
	batchCmd.Flags().DurationVar(&batchWait, "timeout", 60*time.Minute, "overall batch timeout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchWait)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = batchWorkers
	cfg.RateLimiting.RequestsPerSecond = batchRate
	cfg.RateLimiting.BurstSize = batchBurst

	cases, err := worker.ReadCasesFromFile(args[0])
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases found in %s", args[0])
	}
	for i := range cases {
		if cases[i].ScopeID == "" {
			cases[i].ScopeID = batchScope
		}
	}

	p, pool, err := buildPipeline(ctx, cfg, batchScope)
	if err != nil {
		return err
	}
	defer pool.Close()

	fmt.Printf("Verifying %d cases with %d workers\n", len(cases), batchWorkers)
	start := time.Now()

	processor := worker.NewBatchProcessor(p, batchWorkers,
		cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	results := processor.ProcessCases(ctx, cases)

	// Pool workers return results in completion order; restore input order
	// so the printed report matches the cases file.
	byID := make(map[string]*worker.VerifyResult, len(results))
	for _, r := range results {
		byID[r.Case.ID] = r
	}

	var dossiers []*model.Dossier
	var predictions []model.Prediction
	failed := 0

	for _, c := range cases {
		r, ok := byID[c.ID]
		if !ok || r.Error != nil {
			failed++
			if r != nil && r.Error != nil {
				fmt.Fprintf(os.Stderr, "  %s: FAILED: %v\n", c.ID, r.Error)
			}
			continue
		}

		if _, err := p.Builder().Save(r.Dossier); err != nil {
			fmt.Fprintf(os.Stderr, "  %s: save dossier: %v\n", c.ID, err)
		}
		dossiers = append(dossiers, r.Dossier)
		predictions = append(predictions, model.Prediction{
			ID:         r.Dossier.CaseID,
			Prediction: r.Dossier.Verdict.Decision,
			Confidence: r.Dossier.Verdict.Confidence,
		})

		if verbose {
			fmt.Printf("  %s: %s (%.3f)\n",
				r.Dossier.CaseID, r.Dossier.Verdict.Decision, r.Dossier.Verdict.Confidence)
		}
	}

	if len(predictions) > 0 {
		path, err := p.Builder().SavePredictions(predictions, batchPredictions)
		if err != nil {
			return fmt.Errorf("save predictions: %w", err)
		}
		fmt.Printf("Predictions: %s\n", path)
	}

	printSummary(dossier.Summarize(dossiers), failed, time.Since(start))
	if failed == len(cases) {
		return fmt.Errorf("all %d cases failed", failed)
	}
	return nil
}

func printSummary(s model.BatchSummary, failed int, elapsed time.Duration) {
	fmt.Printf("\nBatch complete in %s\n", elapsed.Round(time.Second))
	fmt.Printf("  Cases:      %d verified, %d failed\n", s.TotalCases, failed)

	verdicts := make([]model.Verdict, 0, len(s.VerdictDistribution))
	for v := range s.VerdictDistribution {
		verdicts = append(verdicts, v)
	}
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i] < verdicts[j] })
	for _, v := range verdicts {
		fmt.Printf("  %-14s %d\n", string(v)+":", s.VerdictDistribution[v])
	}

	if s.TotalCases > 0 {
		fmt.Printf("  Confidence: mean %.3f, median %.3f, range [%.3f, %.3f]\n",
			s.Confidence.Mean, s.Confidence.Median, s.Confidence.Min, s.Confidence.Max)
		fmt.Printf("  Evidence:   %.1f excerpts per case\n", s.AvgExcerptsPerCase)
	}
}
