// Package agents holds the LLM-backed drafting agents of the pipeline:
// the writer that produces explanations and the finalizer that polishes
// them for publication.
package agents

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.Writer = (*TemplateWriter)(nil)

// DefaultWriterTemperature leaves room for varied phrasing between
// revision rounds while staying grounded in the code.
const DefaultWriterTemperature = 0.3

const defaultWriterMaxTokens = 512

// maxFactCalls caps how many callee names the static-facts line carries
// so the prompt stays compact for call-heavy functions.
const maxFactCalls = 3

const writerPromptTmpl = `Explain the following {{.Language}} function for a developer reading the codebase for the first time.

STATIC FACTS (ground truth, do not contradict): {{.Facts}}
{{- if .Callers}}
CALLED BY: {{.Callers}}
{{- end}}
{{- if .Callees}}
CALLS INTO: {{.Callees}}
{{- end}}

Cover the purpose, the parameters, the return value, error handling, and any side effects.
Mention only identifiers that actually appear in the code.
{{- if .Feedback}}

FIX THESE ISSUES from the previous draft:
{{.Feedback}}
{{- end}}

CODE:
{{.Code}}

EXPLANATION:`

var writerTemplate = template.Must(template.New("writer").Parse(writerPromptTmpl))

// TemplateWriter drafts explanations from a prompt template seeded with
// parser-derived static facts. It implements the writer contract of
// returning a sentinel-prefixed string on failure instead of an error,
// so the orchestrator can treat a broken draft as data.
type TemplateWriter struct {
	llm         ports.LLMClient
	logger      *zap.Logger
	temperature float64
	maxTokens   int
	tracer      trace.Tracer
}

// NewTemplateWriter creates a writer over the given LLM client.
// Temperature and maxTokens fall back to defaults when zero; a nil
// logger falls back to a no-op logger.
func NewTemplateWriter(llm ports.LLMClient, logger *zap.Logger, temperature float64, maxTokens int) (*TemplateWriter, error) {
	if llm == nil {
		return nil, domain.ErrInvalidConfiguration
	}
	if temperature == 0 {
		temperature = DefaultWriterTemperature
	}
	if maxTokens == 0 {
		maxTokens = defaultWriterMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateWriter{
		llm:         llm,
		logger:      logger,
		temperature: temperature,
		maxTokens:   maxTokens,
		tracer:      otel.Tracer("explanation-writer"),
	}, nil
}

// Write drafts an explanation for the given code. On any failure the
// returned string carries the writer error sentinel prefix; callers
// detect it with ports.IsWriterError.
func (w *TemplateWriter) Write(ctx context.Context, code string, rc domain.RevisionContext) string {
	ctx, span := w.tracer.Start(ctx, "TemplateWriter.Write",
		trace.WithAttributes(attribute.String("writer.function", rc.Facts.Name)),
	)
	defer span.End()

	prompt, err := buildWriterPrompt(code, rc)
	if err != nil {
		span.RecordError(err)
		return fmt.Sprintf("%s %v]", ports.WriterErrPrefix, err)
	}

	options := map[string]any{
		"temperature": w.temperature,
		"max_tokens":  w.maxTokens,
	}
	reply, err := w.llm.Generate(ctx, prompt, options)
	if err != nil {
		w.logger.Warn("explanation draft failed",
			zap.String("function", rc.Facts.Name),
			zap.Error(err),
		)
		span.RecordError(err)
		return fmt.Sprintf("%s %v]", ports.WriterErrPrefix, err)
	}
	return strings.TrimSpace(reply)
}

func buildWriterPrompt(code string, rc domain.RevisionContext) (string, error) {
	language := rc.Language
	if language == "" {
		language = "source"
	}

	data := struct {
		Language, Facts, Callers, Callees, Feedback, Code string
	}{
		Language: language,
		Facts:    factsLine(rc.Facts),
		Callers:  strings.Join(rc.Callers, ", "),
		Callees:  strings.Join(rc.Callees, ", "),
		Feedback: strings.TrimSpace(rc.RevisionFeedback),
		Code:     code,
	}

	var buf bytes.Buffer
	if err := writerTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render writer prompt: %w", err)
	}
	return buf.String(), nil
}

// factsLine renders the parser-derived facts as one compact line for
// the prompt.
func factsLine(facts domain.StaticFacts) string {
	calls := facts.Calls
	suffix := ""
	if len(calls) > maxFactCalls {
		calls = calls[:maxFactCalls]
		suffix = ",..."
	}
	return fmt.Sprintf("complexity=%d | lines=%d | calls=%s%s",
		facts.Complexity, facts.LineCount, strings.Join(calls, ","), suffix)
}
