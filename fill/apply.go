package fill

import "golang.org/x/net/html"

// Apply resolves r against matched and mutates the tree:
//   - a Callback is invoked first and its result used in its place
//   - Node(matched) is a no-op
//   - Absent removes matched from its parent
//   - StaticNode moves the node into matched's slot
//   - StaticText puts a new text node into matched's slot
func Apply(r Replacement, matched *html.Node) error {
	v, err := resolve(r, matched)
	if err != nil {
		return err
	}
	return act(v, matched)
}

// resolve invokes a Callback and returns its result. Errors from the
// callback are returned as is.
func resolve(r Replacement, matched *html.Node) (Replacement, error) {
	if r.kind != Callback {
		return r, nil
	}
	v, err := r.fn(matched)
	if err != nil {
		return Replacement{}, err
	}
	if v.kind == Callback {
		return Replacement{}, &ErrInvalidReplacement{Node: describe(matched), Kind: v.kind}
	}
	return v, nil
}

// act performs the tree mutation for a resolved replacement.
func act(r Replacement, matched *html.Node) error {
	switch r.kind {
	case StaticNode:
		if r.node == matched {
			return nil
		}
		return replaceNode(matched, r.node)
	case StaticText:
		return replaceNode(matched, &html.Node{Type: html.TextNode, Data: r.text})
	default:
		return removeNode(matched)
	}
}

func removeNode(n *html.Node) error {
	if n.Parent == nil {
		return &ErrDetachedNode{Node: describe(n)}
	}
	n.Parent.RemoveChild(n)
	return nil
}

// replaceNode puts repl where old is. repl is detached from its current
// position first, as DOM replaceChild does.
func replaceNode(old, repl *html.Node) error {
	parent := old.Parent
	if parent == nil {
		return &ErrDetachedNode{Node: describe(old)}
	}
	for p := parent; p != nil; p = p.Parent {
		if p == repl {
			return &ErrHierarchy{Node: describe(old), Replacement: describe(repl)}
		}
	}
	if repl.Parent != nil {
		repl.Parent.RemoveChild(repl)
	}
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
	return nil
}
