// Package render exposes fill as a service: markup plus YAML rules in,
// filled HTML or Markdown out. Templates can be stored by name and rendered
// later. The service is reachable over HTTP (chi) and MCP.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hazyhaar/domfill/dom"
	"github.com/hazyhaar/domfill/fill"
	"github.com/hazyhaar/domfill/rules"
	"github.com/hazyhaar/domfill/store"
)

// Output formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Service renders markup through fill rules.
type Service struct {
	store    *store.Store
	logger   *slog.Logger
	engine   string
	sanitize bool
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables named templates.
func WithStore(st *store.Store) Option { return func(s *Service) { s.store = st } }

// WithEngine sets the engine used by rule sets that do not name one.
func WithEngine(name string) Option { return func(s *Service) { s.engine = name } }

// WithSanitize forces bluemonday sanitization of every html rule.
func WithSanitize(on bool) Option { return func(s *Service) { s.sanitize = on } }

// New creates a Service. A nil logger means slog.Default().
func New(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Request is one render call. HTML overrides a template's markup; Rules
// are appended after the template's rules. Engine, when set, overrides the
// engine named by the rules.
type Request struct {
	HTML     string `json:"html,omitempty"`
	Template string `json:"template,omitempty"`
	Rules    string `json:"rules,omitempty"`
	Engine   string `json:"engine,omitempty"`
	Document bool   `json:"document,omitempty"`
	Format   string `json:"format,omitempty"`
}

// Result is the rendered output.
type Result struct {
	Output string `json:"output"`
	Format string `json:"format"`
	Engine string `json:"engine"`
	Rules  int    `json:"rules"`
}

// Render fills the request's markup and renders it.
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	format := req.Format
	if format == "" {
		format = FormatHTML
	}
	if format != FormatHTML && format != FormatMarkdown {
		return nil, &ErrUnknownFormat{Format: format}
	}

	src := req.HTML
	var base *rules.RuleSet
	if req.Template != "" {
		t, err := s.Template(ctx, req.Template)
		if err != nil {
			return nil, err
		}
		if src == "" {
			src = t.HTML
		}
		if base, err = rules.Parse([]byte(t.Rules)); err != nil {
			return nil, &ErrBadRequest{Reason: fmt.Sprintf("template %s: %v", t.Name, err)}
		}
	} else if strings.TrimSpace(src) == "" {
		return nil, &ErrBadRequest{Reason: "html or template is required"}
	}

	inline, err := rules.Parse([]byte(req.Rules))
	if err != nil {
		return nil, &ErrBadRequest{Reason: err.Error()}
	}
	rs := rules.Merge(base, inline)
	if req.Engine != "" {
		rs.Engine = req.Engine
	}
	if rs.Engine == "" {
		rs.Engine = s.engine
	}
	rs.Sanitize = rs.Sanitize || s.sanitize

	m, err := rs.Compile()
	if err != nil {
		return nil, err
	}
	env, err := rs.Env()
	if err != nil {
		return nil, err
	}

	root, err := parse(src, req.Document)
	if err != nil {
		return nil, err
	}
	if err := fill.Fill(root, m, fill.WithEnv(env)); err != nil {
		s.logger.Warn("render: fill failed", "template", req.Template, "error", err)
		return nil, err
	}

	out := dom.InnerHTML(root)
	if format == FormatMarkdown {
		if out, err = dom.Markdown(root); err != nil {
			return nil, err
		}
	}

	engine := rs.Engine
	if engine == "" {
		engine = "css"
	}
	s.logger.Debug("render: done",
		"template", req.Template,
		"rules", len(m),
		"engine", engine,
		"format", format,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Output: out, Format: format, Engine: engine, Rules: len(m)}, nil
}

func parse(src string, document bool) (*html.Node, error) {
	if document {
		return dom.Parse(strings.NewReader(src))
	}
	return dom.ParseFragment(src)
}

// PutTemplate validates the rules and stores the template.
func (s *Service) PutTemplate(ctx context.Context, name, markup, ruleSrc string) (*store.Template, error) {
	if s.store == nil {
		return nil, &ErrNoStore{}
	}
	if name == "" {
		return nil, &ErrBadRequest{Reason: "template name is required"}
	}
	rs, err := rules.Parse([]byte(ruleSrc))
	if err != nil {
		return nil, &ErrBadRequest{Reason: err.Error()}
	}
	if _, err := rs.Compile(); err != nil {
		return nil, err
	}
	if _, err := rs.Env(); err != nil {
		return nil, err
	}
	t, err := s.store.Put(ctx, name, markup, ruleSrc)
	if err != nil {
		return nil, fmt.Errorf("render: put template: %w", err)
	}
	s.logger.Info("render: template stored", "name", name, "id", t.ID)
	return t, nil
}

// Template returns the named template.
func (s *Service) Template(ctx context.Context, name string) (*store.Template, error) {
	if s.store == nil {
		return nil, &ErrNoStore{}
	}
	t, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("render: get template: %w", err)
	}
	if t == nil {
		return nil, &ErrTemplateNotFound{Name: name}
	}
	return t, nil
}

// Templates lists stored templates.
func (s *Service) Templates(ctx context.Context) ([]*store.Template, error) {
	if s.store == nil {
		return nil, &ErrNoStore{}
	}
	return s.store.List(ctx)
}

// DeleteTemplate removes the named template.
func (s *Service) DeleteTemplate(ctx context.Context, name string) error {
	if s.store == nil {
		return &ErrNoStore{}
	}
	ok, err := s.store.Delete(ctx, name)
	if err != nil {
		return fmt.Errorf("render: delete template: %w", err)
	}
	if !ok {
		return &ErrTemplateNotFound{Name: name}
	}
	s.logger.Info("render: template deleted", "name", name)
	return nil
}
