// Package selector defines the pluggable query abstraction used by fill.
//
// A Selector takes a root node and a query and returns the descendants of
// root that match. Two adapters ship with the package:
//   - NativeSelector: CSS selectors evaluated with querySelectorAll semantics
//   - EngineSelector: any third-party engine invoked as engine(query, root),
//     by default HTMLQuery (XPath, with CSS queries translated to XPath)
//
// Resolve picks one of them from an explicit Env when the caller supplies no
// selector of its own.
package selector

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selector returns the descendants of root matching query.
// The root itself is never part of the result.
type Selector interface {
	Match(root *html.Node, query string) ([]*html.Node, error)
}

// Func adapts a plain function to the Selector interface.
type Func func(root *html.Node, query string) ([]*html.Node, error)

// Match calls f(root, query).
func (f Func) Match(root *html.Node, query string) ([]*html.Node, error) {
	return f(root, query)
}

// Engine is the calling convention of a third-party query engine: query
// first, then the node to search under.
type Engine func(query string, root *html.Node) ([]*html.Node, error)

// NativeSelector wraps the host tree's querySelectorAll primitive.
// Matches are returned in pre-order document order without duplicates,
// including for comma-separated groups. As with querySelectorAll, ancestors
// above root still count for descendant combinators.
type NativeSelector struct{}

// Match implements Selector.
func (NativeSelector) Match(root *html.Node, query string) ([]*html.Node, error) {
	return DefaultCSS(root, query)
}

// DefaultCSS evaluates a CSS selector group against the descendants of root.
func DefaultCSS(root *html.Node, query string) ([]*html.Node, error) {
	group, err := cascadia.ParseGroup(query)
	if err != nil {
		return nil, &ErrBadQuery{Query: query, Engine: "css", Cause: err}
	}
	return cascadia.QueryAll(root, group), nil
}

// EngineSelector adapts a named third-party Engine to the Selector
// interface. Match order is whatever the engine returns.
type EngineSelector struct {
	Name   string
	Engine Engine
}

// ThirdParty returns a Selector that calls engine(query, root).
func ThirdParty(name string, engine Engine) *EngineSelector {
	return &EngineSelector{Name: name, Engine: engine}
}

// Match implements Selector.
func (s *EngineSelector) Match(root *html.Node, query string) ([]*html.Node, error) {
	return s.Engine(query, root)
}
