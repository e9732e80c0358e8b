package regen

import (
	"regexp"
	"strings"

	"github.com/ahrav/codelens/internal/ports"
)

// callNodeKinds are the syntax-node kinds that represent an invocation
// across the supported grammars.
var callNodeKinds = map[string]struct{}{
	"call":                  {}, // python
	"call_expression":       {}, // go, javascript
	"method_invocation":     {}, // java
	"invocation_expression": {}, // c#
}

// callNameFields are the grammar fields that carry the invoked name,
// tried in order.
var callNameFields = []string{"name", "function"}

var lastIdentRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*$`)

// extractCalls collects the set of invoked call names from a syntax
// tree, normalized for comparison. Qualified names keep only their final
// segment, so owner.findByLastName and this.findByLastName compare equal.
func extractCalls(root ports.SyntaxNode) map[string]struct{} {
	calls := make(map[string]struct{})
	if root == nil {
		return calls
	}

	var walk func(n ports.SyntaxNode)
	walk = func(n ports.SyntaxNode) {
		if _, isCall := callNodeKinds[n.Kind()]; isCall {
			if name := callName(n); name != "" {
				calls[normalizeCallName(name)] = struct{}{}
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return calls
}

// callName resolves the invoked name for a call node: the grammar's
// name/function field when present, trimmed to its last identifier
// segment (dropping receivers and qualifiers).
func callName(n ports.SyntaxNode) string {
	for _, field := range callNameFields {
		if target := n.ChildByField(field); target != nil {
			return lastIdentRe.FindString(strings.TrimSpace(target.Text()))
		}
	}
	return ""
}

// accessorTailRe matches get/set prefixes followed by a capitalized
// remainder of at least three characters.
var accessorTailRe = regexp.MustCompile(`^(?:get|set)([A-Z][A-Za-z0-9]{2,})$`)

// synonymGroups maps interchangeable verb prefixes onto a canonical
// bucket. Each group is listed alphabetically; the canonical form is the
// first member. The groups are a versioned rule table: extending them
// must not require control-flow changes.
var synonymGroups = [][]string{
	{"find", "get", "load", "lookup", "retrieve", "search"},
	{"create", "insert", "persist", "save", "store"},
	{"delete", "drop", "erase", "remove"},
	{"edit", "modify", "patch", "set", "update"},
}

// normalizeCallName canonicalizes an invoked name for overlap
// comparison: accessor prefixes are stripped (getOwner and owner compare
// equal), the result is lower-cased, and synonym verbs collapse into
// their bucket's canonical form so loadUser and findUser compare equal.
func normalizeCallName(name string) string {
	if m := accessorTailRe.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	name = strings.ToLower(name)

	for _, group := range synonymGroups {
		canonical := group[0]
		for _, verb := range group {
			if name == verb {
				return canonical
			}
			if strings.HasPrefix(name, verb) && len(name) > len(verb) {
				return canonical + name[len(verb):]
			}
		}
	}
	return name
}

// jaccard computes the Jaccard index of two name sets. Two empty sets
// are defined to overlap completely.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for name := range a {
		if _, ok := b[name]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
