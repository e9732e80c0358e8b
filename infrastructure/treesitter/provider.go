package treesitter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var (
	_ ports.SourceParser   = (*Parser)(nil)
	_ ports.ParserProvider = (*Provider)(nil)
)

// languages maps normalized language names to their grammars.
var languages = map[string]func() *sitter.Language{
	"java":   java.GetLanguage,
	"python": python.GetLanguage,
}

// Parser parses one language. The underlying tree-sitter parser is not
// safe for concurrent use, so Parse serializes access with a mutex.
type Parser struct {
	mu       sync.Mutex
	language string
	parser   *sitter.Parser
}

// NewParser creates a parser for the given language. Language names
// are case-insensitive; "py" is accepted as an alias for Python.
func NewParser(language string) (*Parser, error) {
	name := normalizeLanguage(language)
	grammar, ok := languages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, language)
	}

	p := sitter.NewParser()
	p.SetLanguage(grammar())
	return &Parser{language: name, parser: p}, nil
}

// Language returns the normalized language name.
func (p *Parser) Language() string { return p.language }

// Parse parses source text and returns the root of its syntax tree.
func (p *Parser) Parse(ctx context.Context, src []byte) (ports.SyntaxNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", p.language, err)
	}
	return wrapNode(tree.RootNode(), src), nil
}

// Provider hands out parsers by language, creating each lazily on
// first request and reusing it afterwards.
type Provider struct {
	mu      sync.Mutex
	parsers map[string]*Parser
}

// NewProvider creates an empty parser provider.
func NewProvider() *Provider {
	return &Provider{parsers: make(map[string]*Parser)}
}

// ParserFor returns the cached parser for the language, creating it on
// first use. Unsupported languages yield ErrUnsupportedLanguage.
func (pr *Provider) ParserFor(language string) (ports.SourceParser, error) {
	name := normalizeLanguage(language)

	pr.mu.Lock()
	defer pr.mu.Unlock()

	if p, ok := pr.parsers[name]; ok {
		return p, nil
	}
	p, err := NewParser(name)
	if err != nil {
		return nil, err
	}
	pr.parsers[name] = p
	return p, nil
}

func normalizeLanguage(language string) string {
	name := strings.ToLower(strings.TrimSpace(language))
	if name == "py" {
		return "python"
	}
	return name
}
