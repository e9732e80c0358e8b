package agents

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ahrav/codelens/internal/ports"
)

const finalizerPromptTmpl = `Reformat the following verified code explanation into clean documentation prose.
Keep every factual claim exactly as stated. Do not add new claims, do not remove claims,
do not change any identifier names. Fix only grammar, flow, and formatting.

EXPLANATION:
{{.Explanation}}

REFORMATTED:`

var finalizerTemplate = template.Must(template.New("finalizer").Parse(finalizerPromptTmpl))

const defaultFinalizerMaxTokens = 768

// Finalizer polishes a verified explanation into publishable prose
// without altering its factual content. Formatting runs at temperature
// zero so the pass is deterministic.
type Finalizer struct {
	llm       ports.LLMClient
	logger    *zap.Logger
	maxTokens int
	tracer    trace.Tracer
}

// NewFinalizer creates a finalizer over the given LLM client.
func NewFinalizer(llm ports.LLMClient, logger *zap.Logger) *Finalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finalizer{
		llm:       llm,
		logger:    logger,
		maxTokens: defaultFinalizerMaxTokens,
		tracer:    otel.Tracer("explanation-finalizer"),
	}
}

// Finalize reformats a verified explanation. On any failure the input
// is returned unchanged: a verified explanation is already correct, so
// a formatting outage must never lose it.
func (f *Finalizer) Finalize(ctx context.Context, explanation string) string {
	ctx, span := f.tracer.Start(ctx, "Finalizer.Finalize")
	defer span.End()

	var buf bytes.Buffer
	data := struct{ Explanation string }{Explanation: explanation}
	if err := finalizerTemplate.Execute(&buf, data); err != nil {
		span.RecordError(err)
		return explanation
	}

	options := map[string]any{
		"temperature": 0.0,
		"max_tokens":  f.maxTokens,
	}
	reply, err := f.llm.Generate(ctx, buf.String(), options)
	if err != nil {
		f.logger.Warn("finalize pass failed, keeping verified draft", zap.Error(err))
		span.RecordError(err)
		return explanation
	}

	polished := strings.TrimSpace(reply)
	if polished == "" {
		return explanation
	}
	return polished
}
