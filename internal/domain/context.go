package domain

// StaticFacts carries deterministic analysis results about the target
// function. The writer folds these into its prompt so the draft can cite
// real metrics instead of guessing.
type StaticFacts struct {
	// Name is the function's simple name.
	Name string `json:"name,omitempty"`

	// Complexity is the McCabe cyclomatic complexity.
	Complexity int `json:"complexity,omitempty"`

	// LineCount is the number of source lines in the function body.
	LineCount int `json:"line_count,omitempty"`

	// Calls lists the names of functions this function invokes.
	Calls []string `json:"calls,omitempty"`
}

// RevisionContext is the typed context handed to the writer on each draft.
// Each orchestrator run owns its own copy; the caller's context is never
// mutated. RevisionFeedback is populated only between a REVISE verdict and
// the next draft.
type RevisionContext struct {
	// Facts holds static analysis results for the target function.
	Facts StaticFacts `json:"facts"`

	// Callers contains code snippets of up to a few 1-hop callers.
	Callers []string `json:"callers,omitempty"`

	// Callees contains code snippets of up to a few 1-hop callees.
	Callees []string `json:"callees,omitempty"`

	// Language is the source language tag ("java", "python", ...).
	Language string `json:"language,omitempty"`

	// RevisionFeedback summarizes the prior critique's issues and
	// suggestions. Empty on the first draft.
	RevisionFeedback string `json:"revision_feedback,omitempty"`
}

// Clone returns an independent copy of the context. Slice fields are
// copied so feedback accumulation in one run cannot leak into another.
func (rc RevisionContext) Clone() RevisionContext {
	out := rc
	if rc.Facts.Calls != nil {
		out.Facts.Calls = append([]string(nil), rc.Facts.Calls...)
	}
	if rc.Callers != nil {
		out.Callers = append([]string(nil), rc.Callers...)
	}
	if rc.Callees != nil {
		out.Callees = append([]string(nil), rc.Callees...)
	}
	return out
}
