// Package domain contains the pure data model for explanation verification:
// verdicts, critique results, verified explanations, and the typed context
// carried between revision attempts. Types in this package have no
// dependencies on infrastructure and perform no I/O.
package domain

import "fmt"

// Verdict represents the Critic's three-state outcome for an explanation.
type Verdict string

const (
	// VerdictPass indicates the explanation is accepted as trustworthy.
	VerdictPass Verdict = "PASS"

	// VerdictFail indicates a hard stop: the explanation is rejected and
	// no further revision is attempted.
	VerdictFail Verdict = "FAIL"

	// VerdictRevise indicates the explanation should be redrafted with
	// the critique's feedback and checked again.
	VerdictRevise Verdict = "REVISE"
)

// CritiqueResult is the immutable outcome of a single critique run.
// It aggregates the static check sub-scores and the LLM check into a
// single verdict. Construct it once and never mutate it; the verdict
// cache stores results by value.
type CritiqueResult struct {
	// Verdict is the reduced three-state outcome.
	Verdict Verdict `json:"verdict"`

	// Confidence is the LLM check's self-reported confidence (0-100).
	Confidence int `json:"confidence"`

	// FactualPassed reports whether the explanation referenced only
	// identifiers that actually appear in the code.
	FactualPassed bool `json:"factual_passed"`

	// CompletenessPct is the share of required topics the explanation
	// covers, as a percentage (0-100 in steps of 20).
	CompletenessPct float64 `json:"completeness_pct"`

	// FlaggedRisks lists risk signatures found in the code that the
	// explanation mentions, in detection order.
	FlaggedRisks []string `json:"flagged_risks,omitempty"`

	// Issues lists human-readable problems in detection order.
	// Duplicates are permitted.
	Issues []string `json:"issues,omitempty"`

	// Suggestions carries free-text revision guidance for the writer.
	Suggestions string `json:"suggestions,omitempty"`
}

// Passed reports whether the critique accepted the explanation.
// It is always equivalent to Verdict == VerdictPass.
func (c CritiqueResult) Passed() bool { return c.Verdict == VerdictPass }

// String returns a compact human-readable summary of the critique.
func (c CritiqueResult) String() string {
	return fmt.Sprintf("%s (confidence: %d%%, completeness: %.0f%%, issues: %d)",
		c.Verdict, c.Confidence, c.CompletenessPct, len(c.Issues))
}

// FidelityReport is the regeneration validator's assessment of how
// faithfully an explanation captures the original code's structure.
type FidelityReport struct {
	// Score is the combined fidelity score in [0,1], rounded to three
	// decimal places.
	Score float64 `json:"score"`

	// Passed reports whether Score met the configured threshold.
	Passed bool `json:"passed"`

	// Regenerated is the code the LLM reconstructed from the explanation,
	// with any markdown fences stripped.
	Regenerated string `json:"regenerated,omitempty"`

	// Details is a formatted status string describing the outcome.
	Details string `json:"details"`
}

// VerifiedExplanation is the final output of one orchestrator run.
// It is created once per run and never mutated after return.
type VerifiedExplanation struct {
	// Explanation is the final explanation text, whether or not verified.
	Explanation string `json:"explanation"`

	// Verified reports whether the last critique passed.
	Verified bool `json:"verified"`

	// Confidence is the last critique's confidence (0-100), or 0 when
	// no critique ran.
	Confidence int `json:"confidence"`

	// Iterations is the number of draft/critique rounds actually used.
	// It is always in [1, max iterations].
	Iterations int `json:"iterations"`

	// Critique holds the last critique, or nil when the writer failed
	// before any critique could run.
	Critique *CritiqueResult `json:"critique,omitempty"`

	// FidelityScore is the regeneration fidelity in [0,1], or nil when
	// regeneration was disabled or failed.
	FidelityScore *float64 `json:"fidelity_score,omitempty"`

	// FidelityDetails describes the regeneration outcome, including the
	// error text when regeneration failed.
	FidelityDetails string `json:"fidelity_details,omitempty"`
}

// StatusString returns a one-line verification status for display.
func (v VerifiedExplanation) StatusString() string {
	if v.Verified {
		return fmt.Sprintf("verified (confidence: %d%%)", v.Confidence)
	}
	return fmt.Sprintf("unverified (confidence: %d%%)", v.Confidence)
}
