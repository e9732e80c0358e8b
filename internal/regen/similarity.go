package regen

import "github.com/ahrav/codelens/internal/ports"

// nodeStep is one element of a flattened syntax tree: the node kind plus
// its depth. Carrying depth makes the similarity sensitive to nesting,
// not just to which constructs appear somewhere in the snippet.
type nodeStep struct {
	Kind  string
	Depth int
}

// flatten converts a syntax tree into its depth-first pre-order sequence
// of (kind, depth) steps. A nil root yields an empty sequence, which is
// how parse failures enter the similarity computation.
func flatten(root ports.SyntaxNode) []nodeStep {
	if root == nil {
		return nil
	}
	var steps []nodeStep
	var walk func(n ports.SyntaxNode, depth int)
	walk = func(n ports.SyntaxNode, depth int) {
		steps = append(steps, nodeStep{Kind: n.Kind(), Depth: depth})
		for i := 0; i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				walk(child, depth+1)
			}
		}
	}
	walk(root, 0)
	return steps
}

// matchRatio computes the order-preserving similarity of two flattened
// sequences as 2*LCS / (len(a)+len(b)), in [0,1]. Two empty sequences
// are trivially identical (1.0); exactly one empty sequence matches
// nothing (0.0).
func matchRatio(a, b []nodeStep) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	// Two-row LCS keeps memory linear in the shorter sequence.
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(b)]

	return 2.0 * float64(lcs) / float64(len(a)+len(b))
}
