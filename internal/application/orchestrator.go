// Package application coordinates the explanation verification workflow:
// drafting, compositional critique, bounded revision, and optional
// regeneration validation. It wires the agents and verification
// components behind a single entry point that callers drive per
// function.
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var validate = validator.New()

// DefaultMaxIterations bounds the draft-critique-revise loop when no
// explicit limit is configured.
const DefaultMaxIterations = 3

// OrchestratorConfig defines the behavior of a verification run.
type OrchestratorConfig struct {
	// MaxIterations caps the number of draft-critique-revise rounds.
	// The loop always terminates after this many iterations even when
	// the critic keeps asking for revisions.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations" validate:"required,min=1,max=10"`

	// RunRegeneration enables the regeneration fidelity check after the
	// critique loop settles. Regeneration is skipped for empty or
	// writer-failed explanations regardless of this flag.
	RunRegeneration bool `yaml:"run_regeneration" json:"run_regeneration"`

	// Language names the source language of the code under
	// verification, used to select a parser for regeneration scoring.
	Language string `yaml:"language" json:"language" validate:"required"`
}

// DefaultOrchestratorConfig returns an OrchestratorConfig with the
// standard iteration bound, regeneration enabled, and Java as the
// source language.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxIterations:   DefaultMaxIterations,
		RunRegeneration: true,
		Language:        "java",
	}
}

// VerificationOrchestrator runs the full explanation verification
// workflow for one function at a time: the writer drafts an
// explanation, the critic judges it, revision feedback loops back into
// the writer, and a regeneration check scores the survivor.
// Verify never returns an error; every failure mode is folded into the
// returned VerifiedExplanation so batch callers can keep going.
type VerificationOrchestrator struct {
	config    OrchestratorConfig
	writer    ports.Writer
	critic    ports.Critic
	validator ports.RegenerationValidator
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewVerificationOrchestrator creates an orchestrator from its
// collaborators. The writer and critic are required; the regeneration
// validator may be nil when RunRegeneration is disabled. A nil logger
// falls back to a no-op logger.
func NewVerificationOrchestrator(
	writer ports.Writer,
	critic ports.Critic,
	regenValidator ports.RegenerationValidator,
	logger *zap.Logger,
	config OrchestratorConfig,
) (*VerificationOrchestrator, error) {
	if writer == nil || critic == nil {
		return nil, domain.ErrInvalidConfiguration
	}
	if config.RunRegeneration && regenValidator == nil {
		return nil, fmt.Errorf("%w: regeneration enabled without a validator", domain.ErrInvalidConfiguration)
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationOrchestrator{
		config:    config,
		writer:    writer,
		critic:    critic,
		validator: regenValidator,
		logger:    logger,
		tracer:    otel.Tracer("verification-orchestrator"),
	}, nil
}

// Verify produces a verified explanation for the given code.
// The revision context is cloned up front so accumulated feedback never
// leaks back into the caller's copy. A writer failure sentinel aborts
// the run immediately without consulting the critic or the validator.
func (o *VerificationOrchestrator) Verify(ctx context.Context, code string, rc domain.RevisionContext) domain.VerifiedExplanation {
	ctx, span := o.tracer.Start(ctx, "VerificationOrchestrator.Verify",
		trace.WithAttributes(
			attribute.String("verify.function", rc.Facts.Name),
			attribute.Int("verify.max_iterations", o.config.MaxIterations),
		),
	)
	defer span.End()

	rc = rc.Clone()

	var (
		explanation string
		critique    *domain.CritiqueResult
		iterations  int
	)

	for i := 1; i <= o.config.MaxIterations; i++ {
		iterations = i
		explanation = o.writer.Write(ctx, code, rc)

		if ports.IsWriterError(explanation) {
			o.logger.Warn("writer failed, aborting verification",
				zap.String("function", rc.Facts.Name),
				zap.Int("iteration", i),
			)
			span.SetAttributes(attribute.Bool("verify.writer_error", true))
			return domain.VerifiedExplanation{
				Explanation: explanation,
				Verified:    false,
				Confidence:  0,
				Iterations:  i,
			}
		}

		result := o.critic.Critique(ctx, code, explanation)
		critique = &result

		o.logger.Debug("critique round complete",
			zap.String("function", rc.Facts.Name),
			zap.Int("iteration", i),
			zap.String("verdict", string(result.Verdict)),
			zap.Int("confidence", result.Confidence),
		)

		if result.Verdict == domain.VerdictPass {
			break
		}
		if result.Verdict == domain.VerdictFail {
			// A failed critique is terminal: more revisions of an
			// explanation the critic rejected outright waste tokens.
			break
		}
		if len(result.Issues) > 0 && i < o.config.MaxIterations {
			rc.RevisionFeedback = mergeFeedback(result)
		}
	}

	verified := critique != nil && critique.Passed()
	confidence := 0
	if critique != nil {
		confidence = critique.Confidence
	}

	out := domain.VerifiedExplanation{
		Explanation: explanation,
		Verified:    verified,
		Confidence:  confidence,
		Iterations:  iterations,
		Critique:    critique,
	}

	if o.config.RunRegeneration && strings.TrimSpace(explanation) != "" {
		o.runRegeneration(ctx, code, explanation, &out)
	}

	span.SetAttributes(
		attribute.Bool("verify.verified", out.Verified),
		attribute.Int("verify.confidence", out.Confidence),
		attribute.Int("verify.iterations", out.Iterations),
	)
	return out
}

// runRegeneration scores the settled explanation through the
// regeneration validator. Validator errors are recorded in the result
// rather than propagated so a parser or provider outage never sinks a
// verification run.
func (o *VerificationOrchestrator) runRegeneration(ctx context.Context, code, explanation string, out *domain.VerifiedExplanation) {
	report, err := o.validator.Validate(ctx, code, explanation, o.config.Language)
	if err != nil {
		o.logger.Warn("regeneration validation failed",
			zap.String("language", o.config.Language),
			zap.Error(err),
		)
		out.FidelityDetails = fmt.Sprintf("regeneration validation error: %v", err)
		return
	}
	score := report.Score
	out.FidelityScore = &score
	out.FidelityDetails = report.Details
}

// mergeFeedback folds a critique's issues and suggestions into one
// revision directive for the writer's next draft.
func mergeFeedback(result domain.CritiqueResult) string {
	var parts []string
	if len(result.Issues) > 0 {
		parts = append(parts, "Issues: "+strings.Join(result.Issues, "; "))
	}
	if s := strings.TrimSpace(result.Suggestions); s != "" {
		parts = append(parts, "Suggestions: "+s)
	}
	return strings.Join(parts, " | ")
}
