// Package ports defines the interfaces through which the verification core
// talks to its collaborators: LLM providers, source parsers, the writer
// agent, the verdict cache, and metrics. Implementations live under
// infrastructure; the core depends only on these contracts.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/codelens/internal/domain"
)

// LLMClient is the contract for text generation against any LLM provider.
// Implementations must return an error on failure rather than silently
// returning empty text; callers rely on that to distinguish degraded
// results from genuine completions.
type LLMClient interface {
	// Generate sends a prompt to the provider and returns the generated
	// text. The options map carries provider-agnostic settings; common
	// keys are:
	//   - "temperature": float64 (0.0-1.0)
	//   - "max_tokens": int
	//   - "model": string (overrides the configured model)
	Generate(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens approximates the token count for a text.
	// Useful for context-limit checks before issuing a request.
	EstimateTokens(text string) (int, error)

	// Model returns the model identifier this client is configured with.
	Model() string
}

// CritiqueCache memoizes critique results by content hash so repeated
// verification of the same (code, explanation) pair skips the LLM call.
// Implementations must tolerate concurrent use; writes for the same key
// are idempotent because results are immutable.
type CritiqueCache interface {
	// Get returns the cached result for a key and whether it was present.
	Get(key string) (domain.CritiqueResult, bool)

	// Set stores a result under a key, overwriting any prior entry.
	Set(key string, result domain.CritiqueResult)

	// Clear removes all entries. Intended for test isolation.
	Clear()
}

// MetricsCollector abstracts the metrics backend so infrastructure
// components can record operational data without a hard Prometheus
// dependency.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
