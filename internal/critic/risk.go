package critic

import (
	"fmt"

	"github.com/ahrav/codelens/internal/domain"
)

// checkRisks scans the code against the signature table and partitions
// every hit by whether the explanation acknowledges it. Risks the
// explanation mentions land in flagged; risks it stays silent about
// become "unmentioned risk" issues. The check only appends evidence:
// it can never fail the critique on its own.
func checkRisks(code, explanation string, signatures []domain.RiskSignature) (flagged, issues []string) {
	for _, sig := range signatures {
		if !sig.Pattern.MatchString(code) {
			continue
		}
		if mentionsRisk(explanation, sig.Category) {
			flagged = append(flagged, sig.Description)
			continue
		}
		issues = append(issues, fmt.Sprintf(
			"unmentioned risk (severity %d): %s", sig.Severity, sig.Description))
	}
	return flagged, issues
}
