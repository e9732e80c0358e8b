// Package regen implements the regeneration validator: it asks an LLM to
// reconstruct code from an explanation, then scores structural fidelity
// against the original through syntax-tree comparison. A faithful
// explanation should round-trip into structurally equivalent code.
package regen

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.RegenerationValidator = (*Validator)(nil)

var validate = validator.New()

// Default configuration values for the validator.
const (
	// DefaultFidelityThreshold is the minimum fidelity score to pass.
	DefaultFidelityThreshold = 0.65

	// DefaultRegenTemperature leaves the model a little room to phrase
	// boilerplate while keeping the structure deterministic.
	DefaultRegenTemperature = 0.2

	DefaultRegenMaxTokens = 768
)

// Weights for combining the two similarity signals into one score.
const (
	structuralWeight = 0.6
	apiOverlapWeight = 0.4
)

// regenPromptTmpl instructs the model to reconstruct the exact structural
// equivalent of the explained code: annotations, types, control flow,
// and every referenced call, with nothing added or omitted.
const regenPromptTmpl = `You are reconstructing the EXACT ORIGINAL {{.Language}} function from its explanation.

EXPLANATION:
{{.Explanation}}

REQUIREMENTS:
- Write the EXACT EQUIVALENT {{.Language}} function that this explanation describes
- Preserve ALL annotations and decorators
- Preserve EXACT parameter types and return type
- Preserve the EXACT control-flow structure (if/else branches, loops, returns)
- Preserve ALL calls mentioned in the explanation
- Do NOT add any functionality not described in the explanation
- Do NOT omit any functionality that IS described
- Output ONLY the raw {{.Language}} code, no markdown fences, no commentary

CODE:`

var regenTemplate = template.Must(template.New("regenerate").Parse(regenPromptTmpl))

// ValidatorConfig defines the tunable parameters for regeneration
// validation.
type ValidatorConfig struct {
	// Threshold is the minimum fidelity score for a passing report.
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"min=0.0,max=1.0"`

	// Temperature controls randomness in the regeneration request.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=1.0"`

	// MaxTokens limits the length of the regenerated code.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"required,min=50,max=4000"`
}

// DefaultValidatorConfig returns a ValidatorConfig with the standard
// threshold and temperature.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		Threshold:   DefaultFidelityThreshold,
		Temperature: DefaultRegenTemperature,
		MaxTokens:   DefaultRegenMaxTokens,
	}
}

// Validator scores explanation fidelity by round-tripping through a
// reconstruction. It holds no per-request state and is safe for
// concurrent use; parsers are created lazily per language by the
// injected provider and reused across calls.
type Validator struct {
	config  ValidatorConfig
	llm     ports.LLMClient
	parsers ports.ParserProvider
	tracer  trace.Tracer
}

// NewValidator creates a regeneration validator. Returns an error when
// the LLM client or parser provider is missing, or the configuration is
// invalid.
func NewValidator(llm ports.LLMClient, parsers ports.ParserProvider, config ValidatorConfig) (*Validator, error) {
	if llm == nil || parsers == nil {
		return nil, domain.ErrInvalidConfiguration
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	return &Validator{
		config:  config,
		llm:     llm,
		parsers: parsers,
		tracer:  otel.Tracer("regeneration-validator"),
	}, nil
}

// Validate regenerates code from the explanation and scores structural
// fidelity against the original. The fidelity score combines the
// order-preserving node-sequence similarity (weight 0.6) with the
// normalized API-call overlap (weight 0.4). A snippet that fails to
// parse contributes an empty sequence, so one unparseable side forces
// fidelity to zero while two empty sides match trivially.
func (v *Validator) Validate(ctx context.Context, originalCode, explanation, language string) (domain.FidelityReport, error) {
	ctx, span := v.tracer.Start(ctx, "RegenerationValidator.Validate",
		trace.WithAttributes(
			attribute.String("regen.language", language),
			attribute.Int("regen.original_len", len(originalCode)),
		),
	)
	defer span.End()

	parser, err := v.parsers.ParserFor(language)
	if err != nil {
		span.RecordError(err)
		return domain.FidelityReport{}, fmt.Errorf("regeneration validator: %w", err)
	}

	regenerated, err := v.regenerate(ctx, explanation, language)
	if err != nil {
		span.RecordError(err)
		return domain.FidelityReport{}, fmt.Errorf("regeneration failed: %w", err)
	}

	origSeq := parseSequence(ctx, parser, originalCode)
	regenSeq := parseSequence(ctx, parser, regenerated)

	structural := matchRatio(origSeq, regenSeq)

	// An empty/non-empty mismatch is a total miss: no call overlap can
	// rescue a snippet that shares no structure with the original.
	var fidelity, overlap float64
	if (len(origSeq) == 0) != (len(regenSeq) == 0) {
		fidelity = 0.0
	} else {
		origCalls, regenCalls := extractedCalls(ctx, parser, originalCode), extractedCalls(ctx, parser, regenerated)
		overlap = jaccard(origCalls, regenCalls)
		fidelity = structuralWeight*structural + apiOverlapWeight*overlap
	}
	fidelity = math.Round(fidelity*1000) / 1000

	passed := fidelity >= v.config.Threshold
	status := "fail"
	if passed {
		status = "pass"
	}

	report := domain.FidelityReport{
		Score:       fidelity,
		Passed:      passed,
		Regenerated: regenerated,
		Details: fmt.Sprintf("%s: %.1f%% structural similarity, %.1f%% api overlap (threshold %.0f%%)",
			status, structural*100, overlap*100, v.config.Threshold*100),
	}

	span.SetAttributes(
		attribute.Float64("regen.fidelity", fidelity),
		attribute.Float64("regen.structural_similarity", structural),
		attribute.Float64("regen.api_overlap", overlap),
		attribute.Bool("regen.passed", passed),
	)
	return report, nil
}

// regenerate asks the LLM to reconstruct code from the explanation and
// strips any markdown fence wrapper from the reply.
func (v *Validator) regenerate(ctx context.Context, explanation, language string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Language, Explanation string }{Language: language, Explanation: explanation}
	if err := regenTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render regeneration prompt: %w", err)
	}

	options := map[string]any{
		"temperature": v.config.Temperature,
		"max_tokens":  v.config.MaxTokens,
	}
	raw, err := v.llm.Generate(ctx, buf.String(), options)
	if err != nil {
		return "", err
	}
	return stripFences(raw), nil
}

// stripFences removes markdown code-fence lines from an LLM reply.
// Models frequently wrap code in fences despite instructions not to.
func stripFences(code string) string {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	var kept []string
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// parseSequence parses a snippet and flattens it, returning an empty
// sequence on parse failure so the caller's empty-side handling applies.
func parseSequence(ctx context.Context, parser ports.SourceParser, code string) []nodeStep {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	root, err := parser.Parse(ctx, []byte(code))
	if err != nil {
		return nil
	}
	return flatten(root)
}

// extractedCalls parses a snippet and extracts its normalized call set,
// returning an empty set on parse failure.
func extractedCalls(ctx context.Context, parser ports.SourceParser, code string) map[string]struct{} {
	root, err := parser.Parse(ctx, []byte(code))
	if err != nil {
		return map[string]struct{}{}
	}
	return extractCalls(root)
}
