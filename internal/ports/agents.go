package ports

import (
	"context"
	"strings"

	"github.com/ahrav/codelens/internal/domain"
)

// WriterErrPrefix marks a writer failure. The writer never returns an
// error value; instead it returns a sentinel string carrying this prefix,
// and the orchestrator short-circuits when it sees one. The prefix is a
// pinned contract shared by every Writer implementation.
const WriterErrPrefix = "[writer error:"

// IsWriterError reports whether an explanation is the writer's
// failure sentinel rather than a real draft.
func IsWriterError(explanation string) bool {
	return strings.HasPrefix(explanation, WriterErrPrefix)
}

// Writer drafts an explanation for the given code. Implementations must
// not return an error: on failure they return a sentinel string starting
// with WriterErrPrefix. RevisionFeedback in the context, when non-empty,
// lists problems the new draft must fix.
type Writer interface {
	Write(ctx context.Context, code string, rc domain.RevisionContext) string
}

// Critic verifies an explanation against its source code and reduces its
// findings to a three-state verdict. Critique is total: collaborator
// failures degrade the result but never surface as errors.
type Critic interface {
	Critique(ctx context.Context, code, explanation string) domain.CritiqueResult
}

// RegenerationValidator scores explanation fidelity by reconstructing
// code from the explanation and comparing syntax-tree structure against
// the original.
type RegenerationValidator interface {
	Validate(ctx context.Context, originalCode, explanation, language string) (domain.FidelityReport, error)
}
