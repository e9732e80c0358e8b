package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevisionContext_Clone(t *testing.T) {
	rc := RevisionContext{
		Facts:            StaticFacts{Name: "f", Calls: []string{"a"}},
		Callers:          []string{"caller"},
		Callees:          []string{"callee"},
		Language:         "java",
		RevisionFeedback: "fix it",
	}

	clone := rc.Clone()
	clone.Facts.Calls[0] = "changed"
	clone.Callers[0] = "changed"
	clone.Callees[0] = "changed"
	clone.RevisionFeedback = "different"

	assert.Equal(t, []string{"a"}, rc.Facts.Calls)
	assert.Equal(t, []string{"caller"}, rc.Callers)
	assert.Equal(t, []string{"callee"}, rc.Callees)
	assert.Equal(t, "fix it", rc.RevisionFeedback)
}

func TestCritiqueResult_Passed(t *testing.T) {
	assert.True(t, CritiqueResult{Verdict: VerdictPass}.Passed())
	assert.False(t, CritiqueResult{Verdict: VerdictRevise}.Passed())
	assert.False(t, CritiqueResult{Verdict: VerdictFail}.Passed())
}

func TestFunctionRecord_QualifiedName(t *testing.T) {
	assert.Equal(t, "Repo.find", FunctionRecord{Name: "find", ClassName: "Repo"}.QualifiedName())
	assert.Equal(t, "find", FunctionRecord{Name: "find"}.QualifiedName())
}

func TestVerifiedExplanation_StatusString(t *testing.T) {
	v := VerifiedExplanation{Verified: true, Confidence: 90}
	assert.Equal(t, "verified (confidence: 90%)", v.StatusString())

	v = VerifiedExplanation{Verified: false, Confidence: 0}
	assert.Equal(t, "unverified (confidence: 0%)", v.StatusString())
}
