package treesitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahrav/codelens/internal/domain"
)

// Node kinds that declare a function, per grammar.
var functionKinds = map[string]struct{}{
	"method_declaration":      {},
	"constructor_declaration": {},
	"function_definition":     {},
}

// Node kinds that declare an enclosing type.
var classKinds = map[string]struct{}{
	"class_declaration":     {},
	"class_definition":      {},
	"interface_declaration": {},
	"enum_declaration":      {},
}

// Node kinds that add a decision point to cyclomatic complexity.
var decisionKinds = map[string]struct{}{
	"if_statement":          {},
	"for_statement":         {},
	"enhanced_for_statement": {},
	"while_statement":       {},
	"do_statement":          {},
	"switch_block_statement_group": {},
	"case_clause":           {},
	"catch_clause":          {},
	"except_clause":         {},
	"conditional_expression": {},
	"ternary_expression":    {},
	"elif_clause":           {},
}

var loopKinds = map[string]struct{}{
	"for_statement":          {},
	"enhanced_for_statement": {},
	"while_statement":        {},
	"do_statement":           {},
	"for_in_statement":       {},
}

var tryKinds = map[string]struct{}{
	"try_statement":                {},
	"try_with_resources_statement": {},
}

var callKinds = map[string]struct{}{
	"call":                  {},
	"call_expression":       {},
	"method_invocation":     {},
	"object_creation_expression": {},
}

// ExtractFunctions parses a source file and returns a record for every
// function and method it declares, with the static facts the writer
// prompt and revision context are seeded from.
func ExtractFunctions(ctx context.Context, provider *Provider, filePath, language string, src []byte) ([]domain.FunctionRecord, error) {
	parser, err := provider.ParserFor(language)
	if err != nil {
		return nil, err
	}
	root, err := parser.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("extract functions from %s: %w", filePath, err)
	}

	n, ok := root.(*node)
	if !ok {
		return nil, fmt.Errorf("extract functions from %s: unexpected node implementation", filePath)
	}

	var records []domain.FunctionRecord
	collectFunctions(n, filePath, normalizeLanguage(language), "", &records)
	return records, nil
}

// collectFunctions walks the tree, tracking the nearest enclosing class
// name and emitting a record per function declaration.
func collectFunctions(n *node, filePath, language, className string, out *[]domain.FunctionRecord) {
	kind := n.Kind()

	if _, ok := classKinds[kind]; ok {
		if name := fieldText(n, "name"); name != "" {
			className = name
		}
	}

	if _, ok := functionKinds[kind]; ok {
		*out = append(*out, buildRecord(n, filePath, language, className))
		// Nested functions still get their own records.
	}

	for i := 0; i < n.ChildCount(); i++ {
		child, ok := n.Child(i).(*node)
		if !ok {
			continue
		}
		collectFunctions(child, filePath, language, className, out)
	}
}

func buildRecord(n *node, filePath, language, className string) domain.FunctionRecord {
	name := fieldText(n, "name")
	startLine := n.startRow() + 1
	endLine := n.endRow() + 1

	stats := functionStats{complexity: 1}
	gatherStats(n, &stats)

	return domain.FunctionRecord{
		Name:        name,
		FilePath:    filePath,
		StartLine:   startLine,
		EndLine:     endLine,
		Code:        n.Text(),
		Language:    language,
		Complexity:  stats.complexity,
		LineCount:   endLine - startLine + 1,
		Calls:       stats.calls,
		ClassName:   className,
		ParamCount:  countParams(n, language),
		ReturnCount: stats.returns,
		HasLoops:    stats.hasLoops,
		HasTryCatch: stats.hasTry,
	}
}

type functionStats struct {
	complexity int
	returns    int
	hasLoops   bool
	hasTry     bool
	calls      []string
	seenCalls  map[string]struct{}
}

func gatherStats(n *node, stats *functionStats) {
	kind := n.Kind()

	if _, ok := decisionKinds[kind]; ok {
		stats.complexity++
	}
	if _, ok := loopKinds[kind]; ok {
		stats.hasLoops = true
	}
	if _, ok := tryKinds[kind]; ok {
		stats.hasTry = true
	}
	if kind == "return_statement" {
		stats.returns++
	}
	if _, ok := callKinds[kind]; ok {
		if callee := invokedName(n); callee != "" {
			if stats.seenCalls == nil {
				stats.seenCalls = make(map[string]struct{})
			}
			if _, dup := stats.seenCalls[callee]; !dup {
				stats.seenCalls[callee] = struct{}{}
				stats.calls = append(stats.calls, callee)
			}
		}
	}

	for i := 0; i < n.ChildCount(); i++ {
		child, ok := n.Child(i).(*node)
		if !ok {
			continue
		}
		gatherStats(child, stats)
	}
}

// invokedName extracts the bare callee name from a call node,
// dropping any receiver or module qualifier.
func invokedName(n *node) string {
	for _, field := range []string{"name", "function", "type"} {
		target := n.ChildByField(field)
		if target == nil {
			continue
		}
		text := target.Text()
		if idx := strings.LastIndexByte(text, '.'); idx >= 0 {
			text = text[idx+1:]
		}
		if text != "" {
			return text
		}
	}
	return ""
}

// countParams counts declared parameters, skipping Python's self and
// cls receivers.
func countParams(n *node, language string) int {
	params := n.ChildByField("parameters")
	if params == nil {
		return 0
	}
	pn, ok := params.(*node)
	if !ok {
		return 0
	}

	count := 0
	for i := 0; i < pn.ChildCount(); i++ {
		child := pn.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "(", ")", ",":
			continue
		}
		if language == "python" {
			text := strings.TrimSpace(child.Text())
			if text == "self" || text == "cls" {
				continue
			}
		}
		count++
	}
	return count
}

func fieldText(n *node, field string) string {
	target := n.ChildByField(field)
	if target == nil {
		return ""
	}
	return target.Text()
}
