// Package critic implements the compositional critic: three static
// checks (factual references, topic completeness, risk awareness) plus
// one LLM accuracy check, reduced to a PASS/FAIL/REVISE verdict. The
// critic is total: collaborator failures degrade sub-scores but never
// escape as errors. Results are memoized in a content-hash cache.
package critic

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.Critic = (*CompositionalCritic)(nil)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Verdict reduction thresholds. The rule order and cutoffs are a pinned
// contract characterized by tests; do not reinterpret them.
const (
	// staticCompletenessAccept is the completeness floor for the
	// static-strong early accept (rule 1).
	staticCompletenessAccept = 95.0

	// llmConfidenceAccept is the confidence floor for rules 1 and 2.
	llmConfidenceAccept = 70

	// highConfidenceAccept is the confidence floor for rule 3.
	highConfidenceAccept = 80

	// midCompletenessFloor is the completeness floor for rule 3.
	midCompletenessFloor = 60.0

	// reviseCompletenessFloor is the minimum completeness for REVISE;
	// below it the verdict falls through to FAIL.
	reviseCompletenessFloor = 40.0
)

// Default configuration values for the critic.
const (
	DefaultCriticMaxTokens = 256
)

// CriticConfig defines the tunable parameters for the compositional
// critic. Verdict thresholds are intentionally not configurable.
type CriticConfig struct {
	// MaxTokens limits the length of the LLM check's reply. The check
	// requests a four-line structured answer, so the budget stays small.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"required,min=50,max=2000"`

	// CacheEnabled toggles memoization of critique results by content
	// hash. A hit skips all four checks, including the LLM call.
	CacheEnabled bool `yaml:"cache_enabled" json:"cache_enabled"`
}

// DefaultCriticConfig returns a CriticConfig with caching enabled and a
// conservative token budget.
func DefaultCriticConfig() CriticConfig {
	return CriticConfig{
		MaxTokens:    DefaultCriticMaxTokens,
		CacheEnabled: true,
	}
}

// CompositionalCritic verifies explanations against source code through
// independent heuristics. It is stateless apart from the injected cache
// and safe for concurrent use.
type CompositionalCritic struct {
	config     CriticConfig
	llm        ports.LLMClient
	cache      ports.CritiqueCache
	signatures []domain.RiskSignature
	tracer     trace.Tracer
}

// NewCompositionalCritic creates a critic with the given LLM client,
// cache, and risk-signature table. A nil cache gets a fresh VerdictCache;
// nil signatures fall back to the default table. Returns an error when
// the LLM client is missing or the configuration is invalid.
func NewCompositionalCritic(
	llm ports.LLMClient,
	cache ports.CritiqueCache,
	signatures []domain.RiskSignature,
	config CriticConfig,
) (*CompositionalCritic, error) {
	if llm == nil {
		return nil, domain.ErrInvalidConfiguration
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewVerdictCache()
	}
	if signatures == nil {
		signatures = DefaultRiskSignatures
	}

	return &CompositionalCritic{
		config:     config,
		llm:        llm,
		cache:      cache,
		signatures: signatures,
		tracer:     otel.Tracer("compositional-critic"),
	}, nil
}

// Critique runs all four checks against a (code, explanation) pair and
// reduces them to a verdict. It never returns an error: an LLM failure
// zeroes the confidence and lets the static checks steer the reduction.
// With caching enabled, an identical pair is answered from the memo
// table without invoking the LLM.
func (c *CompositionalCritic) Critique(ctx context.Context, code, explanation string) domain.CritiqueResult {
	ctx, span := c.tracer.Start(ctx, "CompositionalCritic.Critique",
		trace.WithAttributes(
			attribute.Int("critique.code_len", len(code)),
			attribute.Int("critique.explanation_len", len(explanation)),
			attribute.Bool("critique.cache_enabled", c.config.CacheEnabled),
		),
	)
	defer span.End()

	var key string
	if c.config.CacheEnabled {
		key = CacheKey(code, explanation)
		if cached, ok := c.cache.Get(key); ok {
			span.SetAttributes(attribute.Bool("critique.cache_hit", true))
			return cached
		}
	}

	// Checks run in a fixed order; issues accumulate in detection order.
	factualPassed, factualIssues := checkFactual(code, explanation)
	completenessPct, completenessIssues := checkCompleteness(explanation)
	flaggedRisks, riskIssues := checkRisks(code, explanation, c.signatures)
	llm := c.runLLMCheck(ctx, code, explanation)

	issues := make([]string, 0, len(factualIssues)+len(completenessIssues)+len(riskIssues)+len(llm.issues))
	issues = append(issues, factualIssues...)
	issues = append(issues, completenessIssues...)
	issues = append(issues, riskIssues...)
	issues = append(issues, llm.issues...)

	result := domain.CritiqueResult{
		Verdict:         reduceVerdict(factualPassed, completenessPct, llm.confidence, llm.passed),
		Confidence:      llm.confidence,
		FactualPassed:   factualPassed,
		CompletenessPct: completenessPct,
		FlaggedRisks:    flaggedRisks,
		Issues:          issues,
		Suggestions:     llm.suggestions,
	}

	if c.config.CacheEnabled {
		c.cache.Set(key, result)
	}

	span.SetAttributes(
		attribute.String("critique.verdict", string(result.Verdict)),
		attribute.Int("critique.confidence", result.Confidence),
		attribute.Bool("critique.factual_passed", factualPassed),
		attribute.Float64("critique.completeness_pct", completenessPct),
		attribute.Int("critique.flagged_risks", len(flaggedRisks)),
		attribute.Int("critique.issues", len(issues)),
	)
	return result
}

// reduceVerdict folds the four check outcomes into a verdict. It is a
// pure function; the rules are evaluated in this exact order and the
// first match wins:
//
//  1. PASS   when the static checks are strong enough on their own.
//  2. PASS   when the LLM check passed with adequate confidence.
//  3. PASS   when high confidence backs sound-but-thinner static checks.
//  4. REVISE when the facts hold and coverage clears the revision floor.
//  5. FAIL   otherwise.
func reduceVerdict(factualPassed bool, completenessPct float64, confidence int, llmPassed bool) domain.Verdict {
	switch {
	case factualPassed && completenessPct >= staticCompletenessAccept && confidence >= llmConfidenceAccept:
		return domain.VerdictPass
	case llmPassed && confidence >= llmConfidenceAccept:
		return domain.VerdictPass
	case confidence >= highConfidenceAccept && factualPassed && completenessPct >= midCompletenessFloor:
		return domain.VerdictPass
	case factualPassed && completenessPct >= reviseCompletenessFloor:
		return domain.VerdictRevise
	default:
		return domain.VerdictFail
	}
}
