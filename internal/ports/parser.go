package ports

import "context"

// SyntaxNode is one node of a parsed syntax tree. The regeneration
// validator walks these to compare structure; the function extractor
// walks them to find definitions and calls. Implementations wrap a
// concrete parser's node type and retain the source text so Text can
// return the node's span.
type SyntaxNode interface {
	// Kind returns the grammar's node type name, e.g. "if_statement"
	// or "method_invocation".
	Kind() string

	// ChildCount returns the number of children, named and anonymous.
	ChildCount() int

	// Child returns the i-th child, or nil when out of range.
	Child(i int) SyntaxNode

	// ChildByField returns the named child for a grammar field such as
	// "name" or "function", or nil when the field is absent.
	ChildByField(field string) SyntaxNode

	// Text returns the source text covered by this node.
	Text() string

	// StartByte and EndByte delimit the node's span in the source.
	StartByte() int
	EndByte() int
}

// SourceParser parses source text of a single language into a syntax tree.
// Implementations are stateless after construction and safe to reuse
// across calls.
type SourceParser interface {
	// Language returns the language tag this parser handles.
	Language() string

	// Parse parses the source into a tree and returns its root node.
	Parse(ctx context.Context, src []byte) (SyntaxNode, error)
}

// ParserProvider constructs parsers lazily per language tag and caches
// them for reuse. ParserFor returns domain.ErrUnsupportedLanguage for
// unknown tags.
type ParserProvider interface {
	ParserFor(language string) (SourceParser, error)
}
