// Package fill applies ordered query-to-replacement maps to an HTML tree.
//
// For each pair in order, the query is run against the live tree and the
// replacement is applied to every match in the order the selector returns
// them. A later pair therefore sees the mutations of earlier ones. Nothing is
// rolled back on failure: pairs already applied stay applied.
//
//	root, _ := dom.ParseFragment(`The <verb>quick</verb> brown fox`)
//	err := fill.Fill(root, fill.QueryMap{
//		{Query: "verb", Replace: fill.Text("SLOW")},
//	})
package fill

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/domfill/selector"
)

type config struct {
	explicit selector.Selector
	env      selector.Env
	envSet   bool
}

// Option customises selector resolution for Fill and GetSelector.
type Option func(*config)

// WithSelector forces the given selector, bypassing the Env.
func WithSelector(s selector.Selector) Option { return func(c *config) { c.explicit = s } }

// WithEnv resolves the selector against env instead of selector.DefaultEnv.
func WithEnv(env selector.Env) Option {
	return func(c *config) { c.env, c.envSet = env, true }
}

// GetSelector returns the selector Fill would use with the same options.
func GetSelector(opts ...Option) (selector.Selector, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if !cfg.envSet {
		cfg.env = selector.DefaultEnv()
	}
	return selector.Resolve(cfg.explicit, cfg.env)
}

// Fill runs every pair of m against root. Selector resolution happens once,
// before any mutation; its failure aborts the call untouched.
func Fill(root *html.Node, m QueryMap, opts ...Option) error {
	sel, err := GetSelector(opts...)
	if err != nil {
		return err
	}
	for _, p := range m {
		matches, err := sel.Match(root, p.Query)
		if err != nil {
			return err
		}
		for _, n := range matches {
			r, err := resolve(p.Replace, n)
			if err != nil {
				return err
			}
			if err := act(r, n); err != nil {
				if detached, ok := err.(*ErrDetachedNode); ok {
					detached.Query = p.Query
				}
				return err
			}
		}
	}
	return nil
}
