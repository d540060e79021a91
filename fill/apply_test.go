package fill

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/hazyhaar/domfill/dom"
)

func TestApply_SameNodeIsNoop(t *testing.T) {
	root := makeRoot(t, `a<em>b</em>c`)
	em := dom.FirstElementChild(root)
	if err := Apply(Node(em), em); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := dom.InnerHTML(root), "a<em>b</em>c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApply_Detached(t *testing.T) {
	orphan := element("p", "x")
	for name, r := range map[string]Replacement{
		"text":   Text("y"),
		"node":   Node(element("b", "")),
		"remove": Remove(),
	} {
		t.Run(name, func(t *testing.T) {
			var detached *ErrDetachedNode
			if err := Apply(r, orphan); !errors.As(err, &detached) {
				t.Errorf("got %v, want *ErrDetachedNode", err)
			}
		})
	}
}

func TestApply_AncestorReplacement(t *testing.T) {
	root := makeRoot(t, `<p><em>x</em></p>`)
	p := root.FirstChild
	em := p.FirstChild
	err := Apply(Func(func(n *html.Node) (Replacement, error) { return Node(n.Parent), nil }), em)
	var hier *ErrHierarchy
	if !errors.As(err, &hier) {
		t.Fatalf("got %v, want *ErrHierarchy", err)
	}
	if em.Parent != p {
		t.Error("tree should be untouched")
	}
}

func TestApply_NestedCallbackRejected(t *testing.T) {
	root := makeRoot(t, `<em>x</em>`)
	inner := Func(func(*html.Node) (Replacement, error) { return Text("y"), nil })
	err := Apply(Func(func(*html.Node) (Replacement, error) { return inner, nil }), root.FirstChild)
	var inv *ErrInvalidReplacement
	if !errors.As(err, &inv) {
		t.Fatalf("got %v, want *ErrInvalidReplacement", err)
	}
}

func TestApply_MovesAttachedNode(t *testing.T) {
	root := makeRoot(t, `<b>keep</b><i>old</i>`)
	b := root.FirstChild
	if err := Apply(Node(b), b.NextSibling); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := dom.InnerHTML(root), "<b>keep</b>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApply_EmptyText(t *testing.T) {
	root := makeRoot(t, `a<em>b</em>c`)
	if err := Apply(Text(""), dom.FirstElementChild(root)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	n := 0
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		n++
	}
	if n != 3 {
		t.Errorf("children: got %d, want 3 (empty text node kept)", n)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		r    Replacement
		want string
	}{
		{Remove(), "absent"},
		{Text("x"), "text"},
		{Node(element("b", "")), "node"},
		{Func(func(*html.Node) (Replacement, error) { return Remove(), nil }), "callback"},
	}
	for _, tt := range tests {
		if got := tt.r.Kind().String(); got != tt.want {
			t.Errorf("Kind: got %q, want %q", got, tt.want)
		}
	}
}

func TestDescribe_TruncatesOnRuneBoundary(t *testing.T) {
	n := &html.Node{Type: html.TextNode, Data: strings.Repeat("é", 30)}
	got := describe(n)
	if want := `text "` + strings.Repeat("é", 20) + `..."`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if !utf8.ValidString(got) || strings.Contains(got, `\x`) {
		t.Errorf("split rune in %s", got)
	}
}
