package fill

import "golang.org/x/net/html"

// Kind tags the variant held by a Replacement.
type Kind uint8

const (
	// Absent removes the matched node.
	Absent Kind = iota
	// StaticNode substitutes a node for the matched node.
	StaticNode
	// StaticText substitutes a new text node for the matched node.
	StaticText
	// Callback computes the replacement from the matched node.
	Callback
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case StaticNode:
		return "node"
	case StaticText:
		return "text"
	case Callback:
		return "callback"
	}
	return "unknown"
}

// CallbackFunc computes a replacement for a matched node. Returning
// Node(matched) leaves the tree alone, so the callback may edit matched in
// place. A non-nil error aborts the fill and is returned unchanged.
type CallbackFunc func(matched *html.Node) (Replacement, error)

// Replacement describes what happens to each node a query matches.
// The zero value is Absent.
type Replacement struct {
	kind Kind
	node *html.Node
	text string
	fn   CallbackFunc
}

// Node replaces the matched node with n. A nil n is Absent.
func Node(n *html.Node) Replacement {
	if n == nil {
		return Replacement{}
	}
	return Replacement{kind: StaticNode, node: n}
}

// Text replaces the matched node with a text node holding s.
func Text(s string) Replacement {
	return Replacement{kind: StaticText, text: s}
}

// Remove deletes the matched node.
func Remove() Replacement {
	return Replacement{}
}

// Func computes the replacement per matched node. A nil fn is Absent.
func Func(fn CallbackFunc) Replacement {
	if fn == nil {
		return Replacement{}
	}
	return Replacement{kind: Callback, fn: fn}
}

// Kind reports the variant.
func (r Replacement) Kind() Kind { return r.kind }

// Node returns the substitute node of a StaticNode replacement.
func (r Replacement) Node() *html.Node { return r.node }

// Text returns the string of a StaticText replacement.
func (r Replacement) Text() string { return r.text }

// Pair binds a query to its replacement.
type Pair struct {
	Query   string
	Replace Replacement
}

// QueryMap is an ordered list of pairs. Later pairs see the tree as left by
// earlier ones.
type QueryMap []Pair
