package fill

import (
	"fmt"

	"golang.org/x/net/html"
)

// ErrDetachedNode is returned when a matched node has no parent to be
// replaced or removed from.
type ErrDetachedNode struct {
	Query string // query that produced the node, set by Fill
	Node  string // short description of the node
}

func (e *ErrDetachedNode) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("fill: node %s matched by %q has no parent", e.Node, e.Query)
	}
	return fmt.Sprintf("fill: node %s has no parent", e.Node)
}

// ErrHierarchy is returned when the replacement node is an ancestor of the
// matched node, which would create a cycle.
type ErrHierarchy struct {
	Node        string
	Replacement string
}

func (e *ErrHierarchy) Error() string {
	return fmt.Sprintf("fill: cannot replace %s with its ancestor %s", e.Node, e.Replacement)
}

// ErrInvalidReplacement is returned when a callback yields another callback.
type ErrInvalidReplacement struct {
	Node string
	Kind Kind
}

func (e *ErrInvalidReplacement) Error() string {
	return fmt.Sprintf("fill: callback for %s returned a %s replacement", e.Node, e.Kind)
}

// describe renders a compact label for error messages.
func describe(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.TextNode:
		s := n.Data
		if r := []rune(s); len(r) > 20 {
			s = string(r[:20]) + "..."
		}
		return fmt.Sprintf("text %q", s)
	case html.DocumentNode:
		return "#document"
	case html.CommentNode:
		return "#comment"
	}
	return "node"
}
