// Package treesitter adapts the tree-sitter parsers to the pipeline's
// parser ports, providing syntax trees for regeneration scoring and
// function extraction for batch verification.
package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.SyntaxNode = (*node)(nil)

// node wraps a tree-sitter node together with the source it was parsed
// from so Text can slice the original bytes.
type node struct {
	inner *sitter.Node
	src   []byte
}

// wrapNode adapts a tree-sitter node, returning a nil interface for a
// nil node so callers can compare against nil directly.
func wrapNode(inner *sitter.Node, src []byte) ports.SyntaxNode {
	if inner == nil {
		return nil
	}
	return &node{inner: inner, src: src}
}

func (n *node) Kind() string { return n.inner.Type() }

func (n *node) ChildCount() int { return int(n.inner.ChildCount()) }

func (n *node) Child(i int) ports.SyntaxNode {
	if i < 0 || i >= int(n.inner.ChildCount()) {
		return nil
	}
	return wrapNode(n.inner.Child(i), n.src)
}

func (n *node) ChildByField(field string) ports.SyntaxNode {
	return wrapNode(n.inner.ChildByFieldName(field), n.src)
}

func (n *node) Text() string { return n.inner.Content(n.src) }

func (n *node) StartByte() int { return int(n.inner.StartByte()) }

func (n *node) EndByte() int { return int(n.inner.EndByte()) }

// startRow returns the zero-based line of the node's first byte.
func (n *node) startRow() int { return int(n.inner.StartPoint().Row) }

// endRow returns the zero-based line of the node's last byte.
func (n *node) endRow() int { return int(n.inner.EndPoint().Row) }
