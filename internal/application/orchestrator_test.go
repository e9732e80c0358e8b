package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/testutils"
)

const orchestratorTestCode = `public int add(int a, int b) { return a + b; }`

func passResult(confidence int) domain.CritiqueResult {
	return domain.CritiqueResult{
		Verdict:         domain.VerdictPass,
		Confidence:      confidence,
		FactualPassed:   true,
		CompletenessPct: 100,
	}
}

func reviseResult(issues []string, suggestions string) domain.CritiqueResult {
	return domain.CritiqueResult{
		Verdict:         domain.VerdictRevise,
		Confidence:      50,
		FactualPassed:   true,
		CompletenessPct: 60,
		Issues:          issues,
		Suggestions:     suggestions,
	}
}

func newTestOrchestrator(t *testing.T, writer *testutils.ScriptedWriter, critic *testutils.ScriptedCritic, validator *testutils.StubValidator, config OrchestratorConfig) *VerificationOrchestrator {
	t.Helper()
	o, err := NewVerificationOrchestrator(writer, critic, validator, nil, config)
	require.NoError(t, err)
	return o
}

func TestNewVerificationOrchestrator(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"x"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}

	_, err := NewVerificationOrchestrator(nil, critic, nil, nil, DefaultOrchestratorConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewVerificationOrchestrator(writer, nil, nil, nil, DefaultOrchestratorConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	// Regeneration enabled without a validator is a wiring mistake.
	_, err = NewVerificationOrchestrator(writer, critic, nil, nil, DefaultOrchestratorConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewVerificationOrchestrator(writer, critic, nil, nil, OrchestratorConfig{Language: "java", RunRegeneration: false})
	assert.Error(t, err, "zero max iterations must be rejected")
}

func TestVerify_FirstDraftPasses(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"Adds two numbers."}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	assert.True(t, result.Verified)
	assert.Equal(t, 90, result.Confidence)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, "Adds two numbers.", result.Explanation)
	require.NotNil(t, result.Critique)
	assert.Equal(t, domain.VerdictPass, result.Critique.Verdict)
	assert.Equal(t, 1, writer.CallCount())
	assert.Equal(t, 1, critic.CallCount())
}

func TestVerify_WriterErrorShortCircuits(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"[writer error: provider down]"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}
	validator := &testutils.StubValidator{Report: domain.FidelityReport{Score: 1.0, Passed: true}}

	o := newTestOrchestrator(t, writer, critic, validator, DefaultOrchestratorConfig())

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	assert.False(t, result.Verified)
	assert.Equal(t, 0, result.Confidence)
	assert.Equal(t, 1, result.Iterations)
	assert.Nil(t, result.Critique)
	assert.Nil(t, result.FidelityScore)
	// Neither the critic nor the validator runs on a failed draft.
	assert.Equal(t, 0, critic.CallCount())
	assert.Equal(t, 0, validator.CallCount())
}

func TestVerify_ReviseLoopAccumulatesFeedback(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"draft one", "draft two", "draft three"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{
		reviseResult([]string{"missing parameters"}, "mention the inputs"),
		reviseResult([]string{"missing return value"}, ""),
		passResult(85),
	}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	assert.True(t, result.Verified)
	assert.Equal(t, 3, result.Iterations)
	assert.Equal(t, "draft three", result.Explanation)
	require.Equal(t, 3, writer.CallCount())

	// The first draft sees no feedback; later drafts see the merged
	// critique of the round before.
	assert.Empty(t, writer.Contexts[0].RevisionFeedback)
	assert.Contains(t, writer.Contexts[1].RevisionFeedback, "missing parameters")
	assert.Contains(t, writer.Contexts[1].RevisionFeedback, "mention the inputs")
	assert.Contains(t, writer.Contexts[2].RevisionFeedback, "missing return value")
}

func TestVerify_SuggestionsOnlyReviseKeepsPriorFeedback(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"draft one", "draft two", "draft three"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{
		reviseResult([]string{"missing parameters"}, ""),
		reviseResult(nil, "polish wording"),
		passResult(85),
	}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	assert.True(t, result.Verified)
	require.Equal(t, 3, writer.CallCount())

	// A revise round without issues sends nothing new to the writer, so
	// the earlier issue-bearing feedback stays in place for draft three.
	assert.Contains(t, writer.Contexts[1].RevisionFeedback, "missing parameters")
	assert.Contains(t, writer.Contexts[2].RevisionFeedback, "missing parameters")
	assert.NotContains(t, writer.Contexts[2].RevisionFeedback, "polish wording")
}

func TestVerify_ReviseExhaustsIterations(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"draft"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{
		reviseResult([]string{"still wrong"}, "fix it"),
	}}

	config := OrchestratorConfig{MaxIterations: 2, RunRegeneration: false, Language: "java"}
	o := newTestOrchestrator(t, writer, critic, nil, config)

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	assert.False(t, result.Verified)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, 2, writer.CallCount())
	assert.Equal(t, 2, critic.CallCount())
	require.NotNil(t, result.Critique)
	assert.Equal(t, domain.VerdictRevise, result.Critique.Verdict)
}

func TestVerify_FailStopsImmediately(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"bad draft"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{
		{Verdict: domain.VerdictFail, Confidence: 10},
	}}

	config := OrchestratorConfig{MaxIterations: 3, RunRegeneration: false, Language: "java"}
	o := newTestOrchestrator(t, writer, critic, nil, config)

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	assert.False(t, result.Verified)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 1, writer.CallCount())
	assert.Equal(t, 1, critic.CallCount())
}

func TestVerify_RegenerationRecorded(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"Adds two numbers."}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}
	validator := &testutils.StubValidator{Report: domain.FidelityReport{
		Score:   0.85,
		Passed:  true,
		Details: "pass: 90.0% structural similarity, 80.0% api overlap (threshold 65%)",
	}}

	o := newTestOrchestrator(t, writer, critic, validator, DefaultOrchestratorConfig())

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	require.NotNil(t, result.FidelityScore)
	assert.Equal(t, 0.85, *result.FidelityScore)
	assert.Contains(t, result.FidelityDetails, "structural similarity")
	assert.Equal(t, 1, validator.CallCount())
}

func TestVerify_ValidatorErrorIsNonFatal(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"Adds two numbers."}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}
	validator := &testutils.StubValidator{Err: errors.New("parser exploded")}

	o := newTestOrchestrator(t, writer, critic, validator, DefaultOrchestratorConfig())

	result := o.Verify(context.Background(), orchestratorTestCode, domain.RevisionContext{})

	// The critique outcome stands; the failure is recorded, not raised.
	assert.True(t, result.Verified)
	assert.Nil(t, result.FidelityScore)
	assert.Contains(t, result.FidelityDetails, "parser exploded")
}

func TestVerify_DoesNotMutateCallerContext(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"draft one", "draft two"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{
		reviseResult([]string{"issue"}, "suggestion"),
		passResult(80),
	}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	rc := domain.RevisionContext{
		Callees:  []string{"helper"},
		Language: "java",
	}
	o.Verify(context.Background(), orchestratorTestCode, rc)

	assert.Empty(t, rc.RevisionFeedback)
	assert.Equal(t, []string{"helper"}, rc.Callees)
}
