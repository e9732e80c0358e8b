package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

// DefaultBatchConcurrency bounds the number of functions verified in
// parallel. Verification is LLM bound, so the limit mostly guards
// provider rate limits rather than CPU.
const DefaultBatchConcurrency = 4

// BatchResult pairs one function with its verification outcome.
type BatchResult struct {
	Function domain.FunctionRecord
	Result   domain.VerifiedExplanation
}

// BatchRunner verifies a set of functions concurrently through a shared
// orchestrator, collecting per-function results in input order.
type BatchRunner struct {
	orchestrator *VerificationOrchestrator
	metrics      ports.MetricsCollector
	logger       *zap.Logger
	concurrency  int
}

// NewBatchRunner creates a batch runner over the given orchestrator.
// A concurrency of zero or less selects DefaultBatchConcurrency; a nil
// metrics collector or logger disables the respective output.
func NewBatchRunner(orchestrator *VerificationOrchestrator, metrics ports.MetricsCollector, logger *zap.Logger, concurrency int) (*BatchRunner, error) {
	if orchestrator == nil {
		return nil, domain.ErrInvalidConfiguration
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		orchestrator: orchestrator,
		metrics:      metrics,
		logger:       logger,
		concurrency:  concurrency,
	}, nil
}

// Run verifies every function in the batch and returns results aligned
// with the input order. Individual verification failures are reflected
// in the per-function result; Run itself fails only when the context is
// cancelled before the batch completes.
func (b *BatchRunner) Run(ctx context.Context, functions []domain.FunctionRecord, callGraph map[string][]string) ([]BatchResult, error) {
	results := make([]BatchResult, len(functions))

	var verifiedCount int64
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, fn := range functions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rc := domain.RevisionContext{
				Facts:    fn.Facts(),
				Callees:  fn.Calls,
				Callers:  callGraph[fn.QualifiedName()],
				Language: fn.Language,
			}

			start := time.Now()
			verified := b.orchestrator.Verify(ctx, fn.Code, rc)
			elapsed := time.Since(start)

			if b.metrics != nil {
				status := "unverified"
				if verified.Verified {
					status = "verified"
				}
				b.metrics.RecordLatency("verification_duration", elapsed, map[string]string{"language": fn.Language})
				b.metrics.RecordCounter("verifications_total", 1, map[string]string{"status": status})
				b.metrics.RecordHistogram("verification_confidence", float64(verified.Confidence), map[string]string{"language": fn.Language})
			}

			b.logger.Info("function verified",
				zap.String("function", fn.QualifiedName()),
				zap.Bool("verified", verified.Verified),
				zap.Int("confidence", verified.Confidence),
				zap.Int("iterations", verified.Iterations),
				zap.Duration("elapsed", elapsed),
			)

			mu.Lock()
			if verified.Verified {
				verifiedCount++
			}
			mu.Unlock()

			results[i] = BatchResult{Function: fn, Result: verified}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Info("batch complete",
		zap.Int("total", len(functions)),
		zap.Int64("verified", verifiedCount),
	)
	return results, nil
}
