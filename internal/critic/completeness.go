package critic

import (
	"fmt"
	"regexp"
)

// topicRule pairs a required explanation topic with the keyword pattern
// that counts as covering it. The five topics are a versioned rule table;
// adding or tuning a topic must not require control-flow changes.
type topicRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// completenessTopics is the fixed topic table. Each topic contributes
// exactly 20 percentage points when its pattern matches the explanation.
var completenessTopics = []topicRule{
	{
		Name:    "parameters",
		Pattern: regexp.MustCompile(`(?i)\b(param(?:eter)?s?|arguments?|takes|accepts|inputs?|receives)\b`),
	},
	{
		Name:    "return value",
		Pattern: regexp.MustCompile(`(?i)\b(returns?|outputs?|produces|yields|results? in)\b`),
	},
	{
		Name:    "purpose",
		Pattern: regexp.MustCompile(`(?i)\b(purpose|responsible for|performs|implements|handles|computes|calculates|retrieves|queries|searches|used to|in order to)\b`),
	},
	{
		Name:    "error handling",
		Pattern: regexp.MustCompile(`(?i)\b(errors?|exceptions?|throws?|raises?|fails?|failures?|catch(?:es)?|invalid|validat)\w*\b`),
	},
	{
		Name:    "side effects",
		Pattern: regexp.MustCompile(`(?i)\b(side.?effects?|modif(?:y|ies)|mutates?|updates?|writes?|stores?|saves?|deletes?|inserts?|logs?|persists?)\b`),
	},
}

// checkCompleteness scores how many of the five required topics the
// explanation covers. The percentage is (matched / 5) * 100; missing
// topics are reported by name, one issue each, in table order.
func checkCompleteness(explanation string) (pct float64, issues []string) {
	matched := 0
	for _, topic := range completenessTopics {
		if topic.Pattern.MatchString(explanation) {
			matched++
			continue
		}
		issues = append(issues, fmt.Sprintf("explanation does not cover topic: %s", topic.Name))
	}
	pct = float64(matched) / float64(len(completenessTopics)) * 100
	return pct, issues
}
