package llm

import (
	"context"
	"time"

	"github.com/ahrav/codelens/internal/ports"
)

// MetricsMiddleware records request latency, token usage, and failure
// counts through the injected collector.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &metricsLLM{next: next, collector: collector}
	}
}

type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	labels := map[string]string{"model": m.next.GetModel()}

	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)
	m.collector.RecordLatency("llm_request_duration", time.Since(start), labels)

	if err != nil {
		m.collector.RecordCounter("llm_request_errors", 1, labels)
		return response, tokensIn, tokensOut, err
	}

	m.collector.RecordCounter("llm_tokens_in", float64(tokensIn), labels)
	m.collector.RecordCounter("llm_tokens_out", float64(tokensOut), labels)
	return response, tokensIn, tokensOut, nil
}

func (m *metricsLLM) GetModel() string { return m.next.GetModel() }

func (m *metricsLLM) SetModel(model string) { m.next.SetModel(model) }
