package critic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCheckResponse(t *testing.T) {
	tests := []struct {
		name            string
		response        string
		wantPassed      bool
		wantConfidence  int
		wantIssues      []string
		wantSuggestions string
	}{
		{
			name:            "well formed passing reply",
			response:        "PASSED: yes\nCONFIDENCE: 85\nISSUES: none\nSUGGESTIONS: none",
			wantPassed:      true,
			wantConfidence:  85,
			wantIssues:      nil,
			wantSuggestions: "",
		},
		{
			name:            "failing reply with issues",
			response:        "PASSED: no\nCONFIDENCE: 40\nISSUES: wrong return claim, missing null check\nSUGGESTIONS: describe the null guard",
			wantPassed:      false,
			wantConfidence:  40,
			wantIssues:      []string{"wrong return claim", "missing null check"},
			wantSuggestions: "describe the null guard",
		},
		{
			name:           "missing confidence defaults to fifty",
			response:       "PASSED: yes\nISSUES: none",
			wantPassed:     true,
			wantConfidence: 50,
		},
		{
			name:           "confidence clamped to hundred",
			response:       "PASSED: yes\nCONFIDENCE: 250",
			wantPassed:     true,
			wantConfidence: 100,
		},
		{
			name:           "negative confidence clamped to zero",
			response:       "PASSED: no\nCONFIDENCE: -10",
			wantPassed:     false,
			wantConfidence: 0,
		},
		{
			name:           "percent suffix tolerated",
			response:       "PASSED: yes\nCONFIDENCE: 90%",
			wantPassed:     true,
			wantConfidence: 90,
		},
		{
			name:           "unparseable confidence defaults to fifty",
			response:       "PASSED: yes\nCONFIDENCE: high",
			wantPassed:     true,
			wantConfidence: 50,
		},
		{
			name:           "lowercase keys and true value accepted",
			response:       "passed: true\nconfidence: 70",
			wantPassed:     true,
			wantConfidence: 70,
		},
		{
			name:           "garbage lines skipped",
			response:       "Sure, here is my assessment\nPASSED: yes\nCONFIDENCE: 60\nHope that helps!",
			wantPassed:     true,
			wantConfidence: 60,
		},
		{
			name:            "none needed suggestions normalize to empty",
			response:        "PASSED: yes\nCONFIDENCE: 80\nSUGGESTIONS: None needed",
			wantPassed:      true,
			wantConfidence:  80,
			wantSuggestions: "",
		},
		{
			name:           "none needed issues normalize to empty",
			response:       "PASSED: yes\nCONFIDENCE: 80\nISSUES: None needed",
			wantPassed:     true,
			wantConfidence: 80,
			wantIssues:     nil,
		},
		{
			name:           "empty response uses all defaults",
			response:       "",
			wantPassed:     false,
			wantConfidence: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCheckResponse(tt.response)
			assert.Equal(t, tt.wantPassed, got.passed)
			assert.Equal(t, tt.wantConfidence, got.confidence)
			assert.Equal(t, tt.wantIssues, got.issues)
			assert.Equal(t, tt.wantSuggestions, got.suggestions)
		})
	}
}

func TestFenceWrap_NeutralizesEmbeddedFences(t *testing.T) {
	wrapped := fenceWrap("code ```injected``` here")
	assert.NotContains(t, wrapped[4:len(wrapped)-5], "```")
	assert.Contains(t, wrapped, "'''injected'''")
}
