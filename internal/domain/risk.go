package domain

import "regexp"

// RiskCategory groups risk signatures that share a vocabulary. The critic
// uses the category to decide whether an explanation mentions a detected
// risk at all, without requiring the exact signature wording.
type RiskCategory string

const (
	RiskInjection   RiskCategory = "injection"
	RiskEval        RiskCategory = "dynamic_execution"
	RiskCredentials RiskCategory = "credentials"
	RiskShell       RiskCategory = "shell"
	RiskSwallowed   RiskCategory = "swallowed_errors"
	RiskValidation  RiskCategory = "unvalidated_input"
	RiskResource    RiskCategory = "resource_leak"
)

// RiskSignature describes one risky code pattern. Signatures live in an
// ordered, externally maintained table; the critic only reads them.
type RiskSignature struct {
	// Pattern matches the risky construct in source code.
	Pattern *regexp.Regexp

	// Description is the human-readable risk name reported to users.
	Description string

	// Severity ranks the risk from 1 (informational) to 4 (critical).
	Severity int

	// Category links the signature to its mention vocabulary.
	Category RiskCategory
}
