// Package rules loads declarative fill rules from YAML.
//
//	engine: css          # css | htmlquery
//	sanitize: true       # run html fragments through bluemonday
//	rules:
//	  - query: verb
//	    text: SLOW
//	  - query: .ad
//	    remove: true
//	  - query: mood
//	    html: "<b>grumpy</b>"
//	  - query: .inner
//	    attrs: {class: color}
//	  - query: h1
//	    content: New title
//
// Rules keep their file order, which is the order fill applies them in.
package rules

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/domfill/dom"
	"github.com/hazyhaar/domfill/fill"
	"github.com/hazyhaar/domfill/selector"
)

// RuleSet is an ordered list of rules plus the engine they are written for.
type RuleSet struct {
	Engine   string `yaml:"engine" json:"engine,omitempty"`
	Sanitize bool   `yaml:"sanitize" json:"sanitize,omitempty"`
	Rules    []Rule `yaml:"rules" json:"rules"`
}

// Rule pairs a query with exactly one action.
type Rule struct {
	Query   string            `yaml:"query" json:"query"`
	Text    *string           `yaml:"text,omitempty" json:"text,omitempty"`
	HTML    string            `yaml:"html,omitempty" json:"html,omitempty"`
	Remove  bool              `yaml:"remove,omitempty" json:"remove,omitempty"`
	Attrs   map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	Content *string           `yaml:"content,omitempty" json:"content,omitempty"`
}

// Parse decodes a YAML (or JSON) rule set. Empty input is an empty set.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("rules: parse: %w", err)
	}
	return &rs, nil
}

// Load reads and parses a rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return Parse(data)
}

// Merge returns a set holding the rules of a followed by those of b.
// A non-empty engine in b overrides a's; sanitize is on if either asks.
func Merge(a, b *RuleSet) *RuleSet {
	out := &RuleSet{}
	for _, rs := range []*RuleSet{a, b} {
		if rs == nil {
			continue
		}
		if rs.Engine != "" {
			out.Engine = rs.Engine
		}
		out.Sanitize = out.Sanitize || rs.Sanitize
		out.Rules = append(out.Rules, rs.Rules...)
	}
	return out
}

// Env returns the selector environment named by the set's engine.
func (rs *RuleSet) Env() (selector.Env, error) {
	return selector.EnvFor(rs.Engine)
}

// Compile turns the set into a fill.QueryMap. It checks every rule before
// returning so nothing half-valid reaches a fill.
func (rs *RuleSet) Compile() (fill.QueryMap, error) {
	policy := bluemonday.UGCPolicy()
	m := make(fill.QueryMap, 0, len(rs.Rules))
	for i, r := range rs.Rules {
		repl, err := r.replacement(rs.Sanitize, policy)
		if err != nil {
			return nil, &ErrInvalidRule{Index: i, Query: r.Query, Reason: err.Error()}
		}
		m = append(m, fill.Pair{Query: r.Query, Replace: repl})
	}
	return m, nil
}

func (r Rule) replacement(sanitize bool, policy *bluemonday.Policy) (fill.Replacement, error) {
	if r.Query == "" {
		return fill.Replacement{}, fmt.Errorf("missing query")
	}

	actions := 0
	for _, set := range []bool{r.Text != nil, r.HTML != "", r.Remove, len(r.Attrs) > 0, r.Content != nil} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return fill.Replacement{}, fmt.Errorf("want exactly one of text, html, remove, attrs, content; got %d", actions)
	}

	switch {
	case r.Text != nil:
		return fill.Text(*r.Text), nil
	case r.Remove:
		return fill.Remove(), nil
	case r.HTML != "":
		return fragment(r.HTML, sanitize, policy)
	case r.Content != nil:
		content := *r.Content
		return fill.Func(func(n *html.Node) (fill.Replacement, error) {
			dom.SetText(n, content)
			return fill.Node(n), nil
		}), nil
	default:
		keys := make([]string, 0, len(r.Attrs))
		for k := range r.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := r.Attrs
		return fill.Func(func(n *html.Node) (fill.Replacement, error) {
			if n.Type != html.ElementNode {
				return fill.Node(n), nil
			}
			for _, k := range keys {
				dom.SetAttr(n, k, attrs[k])
			}
			return fill.Node(n), nil
		}), nil
	}
}

// fragment parses src once and hands each match its own copy.
func fragment(src string, sanitize bool, policy *bluemonday.Policy) (fill.Replacement, error) {
	if sanitize {
		src = policy.Sanitize(src)
	}
	root, err := dom.ParseFragment(strings.TrimSpace(src))
	if err != nil {
		return fill.Replacement{}, err
	}
	proto := root.FirstChild
	if proto == nil {
		return fill.Replacement{}, fmt.Errorf("html fragment is empty")
	}
	if proto.NextSibling != nil {
		return fill.Replacement{}, fmt.Errorf("html fragment must have a single root node")
	}
	root.RemoveChild(proto)
	return fill.Func(func(*html.Node) (fill.Replacement, error) {
		return fill.Node(dom.Clone(proto)), nil
	}), nil
}
