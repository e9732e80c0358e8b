package regen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
	"github.com/ahrav/codelens/internal/testutils"
)

// stubParser maps exact source strings to pre-built trees, failing on
// anything unknown.
type stubParser struct {
	language string
	trees    map[string]*fakeNode
}

func (s *stubParser) Language() string { return s.language }

func (s *stubParser) Parse(ctx context.Context, src []byte) (ports.SyntaxNode, error) {
	if tree, ok := s.trees[string(src)]; ok {
		return tree, nil
	}
	return nil, fmt.Errorf("unparseable source")
}

type stubProvider struct {
	parser *stubParser
}

func (s *stubProvider) ParserFor(language string) (ports.SourceParser, error) {
	if language != s.parser.language {
		return nil, domain.ErrUnsupportedLanguage
	}
	return s.parser, nil
}

const originalSnippet = `public Owner getOwner() { return this.owner; }`

func methodTree(callee string) *fakeNode {
	return tree("method_declaration",
		tree("block",
			callNode("method_invocation", "name", callee),
			tree("return_statement")))
}

func newTestValidator(t *testing.T, llmReply string, trees map[string]*fakeNode) (*Validator, *testutils.MockLLMClient) {
	t.Helper()

	mock := testutils.NewMockLLMClient("validator-test")
	mock.AddResponse(testutils.MockResponse{
		Pattern:  "reconstructing the EXACT ORIGINAL",
		Response: llmReply,
	})

	provider := &stubProvider{parser: &stubParser{language: "java", trees: trees}}
	v, err := NewValidator(mock, provider, DefaultValidatorConfig())
	require.NoError(t, err)
	return v, mock
}

func TestNewValidator(t *testing.T) {
	provider := &stubProvider{parser: &stubParser{language: "java"}}
	mock := testutils.NewMockLLMClient("validator-test")

	_, err := NewValidator(nil, provider, DefaultValidatorConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewValidator(mock, nil, DefaultValidatorConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	bad := DefaultValidatorConfig()
	bad.MaxTokens = 1
	_, err = NewValidator(mock, provider, bad)
	assert.Error(t, err)
}

func TestValidate_PerfectReconstruction(t *testing.T) {
	trees := map[string]*fakeNode{originalSnippet: methodTree("getOwner")}
	v, _ := newTestValidator(t, originalSnippet, trees)

	report, err := v.Validate(context.Background(), originalSnippet, "Returns the owner.", "java")
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.Score)
	assert.True(t, report.Passed)
	assert.Equal(t, originalSnippet, report.Regenerated)
	assert.Contains(t, report.Details, "pass")
}

func TestValidate_StripsMarkdownFences(t *testing.T) {
	trees := map[string]*fakeNode{originalSnippet: methodTree("getOwner")}
	fenced := "```java\n" + originalSnippet + "\n```"
	v, _ := newTestValidator(t, fenced, trees)

	report, err := v.Validate(context.Background(), originalSnippet, "Returns the owner.", "java")
	require.NoError(t, err)

	assert.Equal(t, originalSnippet, report.Regenerated)
	assert.Equal(t, 1.0, report.Score)
}

func TestValidate_UnparseableRegenerationScoresZero(t *testing.T) {
	trees := map[string]*fakeNode{originalSnippet: methodTree("getOwner")}
	v, _ := newTestValidator(t, "I cannot reconstruct this method.", trees)

	report, err := v.Validate(context.Background(), originalSnippet, "Returns the owner.", "java")
	require.NoError(t, err)

	// One parseable side and one empty side is a total miss, even
	// though the call overlap is undefined.
	assert.Equal(t, 0.0, report.Score)
	assert.False(t, report.Passed)
	assert.Contains(t, report.Details, "fail")
}

func TestValidate_PartialStructure(t *testing.T) {
	regenerated := `public Owner getOwner() { return owner; }`
	trees := map[string]*fakeNode{
		originalSnippet: methodTree("getOwner"),
		regenerated: tree("method_declaration",
			tree("block",
				tree("return_statement"))),
	}
	v, _ := newTestValidator(t, regenerated, trees)

	report, err := v.Validate(context.Background(), originalSnippet, "Returns the owner.", "java")
	require.NoError(t, err)

	// Structural: LCS 3 of (4+3) nodes = 6/7; overlap: one empty call
	// set against a non-empty one = 0. Fidelity = 0.6*6/7 rounded.
	assert.InDelta(t, 0.514, report.Score, 1e-9)
	assert.False(t, report.Passed)
}

func TestValidate_LLMFailure(t *testing.T) {
	trees := map[string]*fakeNode{originalSnippet: methodTree("getOwner")}
	v, mock := newTestValidator(t, "", trees)
	mock.FailWith(errors.New("provider down"))

	_, err := v.Validate(context.Background(), originalSnippet, "Returns the owner.", "java")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regeneration failed")
}

func TestValidate_UnsupportedLanguage(t *testing.T) {
	trees := map[string]*fakeNode{originalSnippet: methodTree("getOwner")}
	v, _ := newTestValidator(t, originalSnippet, trees)

	_, err := v.Validate(context.Background(), originalSnippet, "Returns the owner.", "cobol")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences untouched", "return x;", "return x;"},
		{"plain fences removed", "```\nreturn x;\n```", "return x;"},
		{"language tag removed", "```java\nreturn x;\n```", "return x;"},
		{"interior fences removed too", "```java\na();\n```\nb();", "a();\nb();"},
		{"unfenced reply with leading text kept", "code:\n```\nx\n```", "code:\n```\nx\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}
