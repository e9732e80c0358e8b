package critic

import (
	"regexp"
	"strings"

	"github.com/ahrav/codelens/internal/domain"
)

// DefaultRiskSignatures is the ordered table of risky code patterns the
// critic scans for. The table is data, not logic: severity and wording
// can evolve without touching the check itself. Order is significant
// because flagged risks and issues are reported in detection order.
var DefaultRiskSignatures = []domain.RiskSignature{
	{
		Pattern:     regexp.MustCompile(`["']SELECT\s.*\+`),
		Description: "string-concatenated SQL query",
		Severity:    3,
		Category:    domain.RiskInjection,
	},
	{
		Pattern:     regexp.MustCompile(`["']INSERT\s.*\+`),
		Description: "string-concatenated SQL INSERT",
		Severity:    3,
		Category:    domain.RiskInjection,
	},
	{
		Pattern:     regexp.MustCompile(`["']DELETE\s.*\+`),
		Description: "string-concatenated SQL DELETE",
		Severity:    4,
		Category:    domain.RiskInjection,
	},
	{
		Pattern:     regexp.MustCompile(`["']UPDATE\s.*\+`),
		Description: "string-concatenated SQL UPDATE",
		Severity:    3,
		Category:    domain.RiskInjection,
	},
	{
		Pattern:     regexp.MustCompile(`\.executeQuery\s*\(\s*["'].*\+`),
		Description: "concatenated SQL passed to executeQuery",
		Severity:    4,
		Category:    domain.RiskInjection,
	},
	{
		Pattern:     regexp.MustCompile(`\beval\s*\(`),
		Description: "use of eval",
		Severity:    4,
		Category:    domain.RiskEval,
	},
	{
		Pattern:     regexp.MustCompile(`\bexec\s*\(`),
		Description: "use of exec",
		Severity:    4,
		Category:    domain.RiskEval,
	},
	{
		Pattern:     regexp.MustCompile(`\b__import__\s*\(`),
		Description: "dynamic import",
		Severity:    2,
		Category:    domain.RiskEval,
	},
	{
		Pattern:     regexp.MustCompile(`(?i)(password|secret|api.?key)\s*=\s*["']`),
		Description: "hardcoded credential",
		Severity:    3,
		Category:    domain.RiskCredentials,
	},
	{
		Pattern:     regexp.MustCompile(`\bos\.system\s*\(`),
		Description: "shell command via os.system",
		Severity:    3,
		Category:    domain.RiskShell,
	},
	{
		Pattern:     regexp.MustCompile(`\bsubprocess\..*shell\s*=\s*True`),
		Description: "subprocess invoked with shell=True",
		Severity:    3,
		Category:    domain.RiskShell,
	},
	{
		Pattern:     regexp.MustCompile(`Runtime\.getRuntime\(\)\.exec`),
		Description: "shell command via Runtime.exec",
		Severity:    3,
		Category:    domain.RiskShell,
	},
	{
		Pattern:     regexp.MustCompile(`except\s*:`),
		Description: "bare except swallows all errors",
		Severity:    2,
		Category:    domain.RiskSwallowed,
	},
	{
		Pattern:     regexp.MustCompile(`catch\s*\(\s*Exception\s`),
		Description: "catching generic Exception",
		Severity:    1,
		Category:    domain.RiskSwallowed,
	},
}

// riskMentionKeywords maps each risk category to the vocabulary that
// counts as the explanation acknowledging the risk. Matching is
// case-insensitive substring search, so stems like "concatenat" cover
// both "concatenated" and "concatenation".
var riskMentionKeywords = map[domain.RiskCategory][]string{
	domain.RiskInjection: {
		"injection", "sanitiz", "parameteriz", "prepared statement",
		"concatenat", "escap", "unsafe",
	},
	domain.RiskEval: {
		"eval", "exec", "dynamic execution", "arbitrary code", "code injection",
	},
	domain.RiskCredentials: {
		"credential", "hardcoded", "hard-coded", "password", "secret", "api key",
	},
	domain.RiskShell: {
		"shell", "command injection", "os.system", "subprocess",
	},
	domain.RiskSwallowed: {
		"swallow", "bare except", "generic exception", "broad exception",
		"silently", "suppress",
	},
}

// mentionsRisk reports whether the explanation contains any keyword
// associated with the category.
func mentionsRisk(explanation string, category domain.RiskCategory) bool {
	lowered := strings.ToLower(explanation)
	for _, kw := range riskMentionKeywords[category] {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
