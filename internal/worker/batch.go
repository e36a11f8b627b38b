package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/canonist/canonist/internal/model"
)

// Verifier evaluates a single case
type Verifier interface {
	Verify(ctx context.Context, c model.Case) (*model.Dossier, error)
}

// VerifyJob is one claim verification submitted to the pool
type VerifyJob struct {
	Case     model.Case
	Verifier Verifier
	Limiter  *Limiter // optional throttle on LLM-bound work
}

// Execute executes the verification job
func (j *VerifyJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, "llm"); err != nil {
			return &VerifyResult{Case: j.Case, Error: err}
		}
	}

	dossier, err := j.Verifier.Verify(ctx, j.Case)
	return &VerifyResult{Case: j.Case, Dossier: dossier, Error: err}
}

// VerifyResult is the outcome of one verification job
type VerifyResult struct {
	Case    model.Case
	Dossier *model.Dossier
	Error   error
}

// GetError returns the error from the result
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple cases concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor; requestsPerSecond throttles
// LLM-bound calls across all workers.
func NewBatchProcessor(verifier Verifier, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessCases verifies cases concurrently and returns one result per case
func (b *BatchProcessor) ProcessCases(ctx context.Context, cases []model.Case) []*VerifyResult {
	if len(cases) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submission runs alongside result collection: submitting the whole
	// batch first would wedge once the buffered results channel fills and
	// workers stop consuming the queue.
	go func() {
		for _, c := range cases {
			pool.Submit(&VerifyJob{
				Case:     c,
				Verifier: b.verifier,
				Limiter:  b.limiter,
			})
		}
		pool.Done()
	}()

	results := pool.Wait()

	verifyResults := make([]*VerifyResult, len(results))
	for i, result := range results {
		verifyResults[i] = result.(*VerifyResult)
	}
	return verifyResults
}

// ProcessFile reads cases from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	cases, err := ReadCasesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return b.ProcessCases(ctx, cases), nil
}

// ReadCasesFromFile reads JSON-lines cases ({"id","scope_id","claim"}),
// skipping blank lines and # comments and deduplicating by case id.
func ReadCasesFromFile(filePath string) ([]model.Case, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var cases []model.Case
	seen := make(map[string]bool)
	lineNo := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var c model.Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("parse case at line %d: %w", lineNo, err)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("case-%d", lineNo)
		}

		if !seen[c.ID] {
			seen[c.ID] = true
			cases = append(cases, c)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return cases, nil
}
