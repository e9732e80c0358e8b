package critic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concatenatedQueryCode = `public ResultSet loadUser(String name) {
    String sql = "SELECT * FROM users WHERE name = '" + name + "'";
    return statement.executeQuery(sql);
}`

func TestCheckRisks(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		explanation string
		wantFlagged int
		wantIssues  int
	}{
		{
			name:        "clean code produces nothing",
			code:        "public int add(int a, int b) { return a + b; }",
			explanation: "Adds two numbers.",
			wantFlagged: 0,
			wantIssues:  0,
		},
		{
			name:        "acknowledged risk lands in flagged",
			code:        concatenatedQueryCode,
			explanation: "Builds the SQL by string concatenation, which is vulnerable to injection.",
			wantFlagged: 1,
			wantIssues:  0,
		},
		{
			name: "silent explanation yields unmentioned issue",
			// Describing the query without naming the danger does not
			// count as acknowledgement.
			code:        concatenatedQueryCode,
			explanation: "Builds a SQL query string from the name and runs it safely.",
			wantFlagged: 0,
			wantIssues:  1,
		},
		{
			name:        "hardcoded credential detected",
			code:        `password = "hunter2"`,
			explanation: "Sets up the connection.",
			wantFlagged: 0,
			wantIssues:  1,
		},
		{
			name:        "bare except detected",
			code:        "try:\n    load()\nexcept:\n    pass",
			explanation: "Loads data, silently suppressing every error.",
			wantFlagged: 1,
			wantIssues:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flagged, issues := checkRisks(tt.code, tt.explanation, DefaultRiskSignatures)
			assert.Len(t, flagged, tt.wantFlagged)
			assert.Len(t, issues, tt.wantIssues)
		})
	}
}

func TestCheckRisks_IssueFormat(t *testing.T) {
	_, issues := checkRisks(concatenatedQueryCode, "Runs a lookup.", DefaultRiskSignatures)
	require.Len(t, issues, 1)
	assert.Equal(t, "unmentioned risk (severity 3): string-concatenated SQL query", issues[0])
}

func TestMentionsRisk(t *testing.T) {
	assert.True(t, mentionsRisk("Uses PARAMETERIZED statements.", "injection"))
	assert.True(t, mentionsRisk("the value is concatenated unsafely", "injection"))
	assert.False(t, mentionsRisk("builds a query from user input", "injection"))
}
