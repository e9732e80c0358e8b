package critic

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// llmCheckPrompt is the fixed verification prompt. It requests an exact
// four-line structured reply so the permissive parser has a stable shape
// to work against. User content is wrapped in code fences to keep it
// from breaking out of its designated area.
const llmCheckPrompt = `Verify whether this explanation accurately matches the code. Check for hallucinated names, wrong behavior claims, and missing functionality.

CODE:
{{.Code}}
EXPLANATION:
{{.Explanation}}
Reply EXACTLY in this format (one line each):
PASSED: yes or no
CONFIDENCE: 0-100
ISSUES: comma-separated list or none
SUGGESTIONS: text or none needed`

var llmCheckTemplate = template.Must(template.New("llmCheck").Parse(llmCheckPrompt))

// llmCheckResult holds the parsed outcome of the LLM accuracy check.
type llmCheckResult struct {
	passed      bool
	confidence  int
	issues      []string
	suggestions string
}

// fenceWrap wraps user content in a markdown code block and neutralizes
// embedded fences so it cannot inject instructions into the prompt.
func fenceWrap(content string) string {
	content = strings.ReplaceAll(content, "```", "'''")
	return "```\n" + content + "\n```\n"
}

// buildCheckPrompt renders the verification prompt for a code and
// explanation pair.
func buildCheckPrompt(code, explanation string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Code, Explanation string }{
		Code:        fenceWrap(code),
		Explanation: fenceWrap(explanation),
	}
	if err := llmCheckTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render verification prompt: %w", err)
	}
	return buf.String(), nil
}

// parseCheckResponse parses the model's structured reply as a small
// forgiving grammar: KEY: value lines matched case-insensitively in any
// order. Unknown or malformed fields fall back to fixed defaults instead
// of raising: a missing CONFIDENCE is 50, "none" values normalize to
// empty, and unparseable lines are skipped.
func parseCheckResponse(response string) llmCheckResult {
	result := llmCheckResult{confidence: 50}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "PASSED":
			v := strings.ToLower(value)
			result.passed = v == "yes" || v == "true" || v == "1"
		case "CONFIDENCE":
			n, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
			if err != nil {
				result.confidence = 50
				continue
			}
			result.confidence = clampConfidence(n)
		case "ISSUES":
			v := strings.ToLower(value)
			if v == "none" || v == "none needed" {
				result.issues = nil
				continue
			}
			result.issues = result.issues[:0]
			for _, issue := range strings.Split(value, ",") {
				if issue = strings.TrimSpace(issue); issue != "" {
					result.issues = append(result.issues, issue)
				}
			}
		case "SUGGESTIONS":
			v := strings.ToLower(value)
			if v == "none" || v == "none needed" {
				result.suggestions = ""
				continue
			}
			result.suggestions = value
		}
	}
	return result
}

func clampConfidence(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// runLLMCheck performs the LLM accuracy check at temperature zero.
// A failed call degrades the result rather than propagating: the check
// reports not-passed with zero confidence and an error-tagged issue, and
// the static checks still decide the verdict through the reduction rules.
func (c *CompositionalCritic) runLLMCheck(ctx context.Context, code, explanation string) llmCheckResult {
	prompt, err := buildCheckPrompt(code, explanation)
	if err != nil {
		return llmCheckResult{
			confidence:  0,
			issues:      []string{fmt.Sprintf("llm check error: %v", err)},
			suggestions: "Retry verification",
		}
	}

	options := map[string]any{
		"temperature": 0.0,
		"max_tokens":  c.config.MaxTokens,
	}
	response, err := c.llm.Generate(ctx, prompt, options)
	if err != nil {
		return llmCheckResult{
			confidence:  0,
			issues:      []string{fmt.Sprintf("llm check error: %v", err)},
			suggestions: "Retry verification",
		}
	}
	return parseCheckResponse(response)
}
