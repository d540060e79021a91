package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domfill/fill"
	"github.com/hazyhaar/domfill/rules"
	"github.com/hazyhaar/domfill/store"
)

func testService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithStore(store.OpenMemory(t))}, opts...)
	return New(logger, opts...)
}

func TestRender_Inline(t *testing.T) {
	s := testService(t)
	res, err := s.Render(context.Background(), Request{
		HTML:  `The <verb>quick</verb> brown fox`,
		Rules: "rules:\n  - query: verb\n    text: SLOW\n",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Output != "The SLOW brown fox" {
		t.Errorf("Output: got %q", res.Output)
	}
	if res.Format != FormatHTML || res.Engine != "css" || res.Rules != 1 {
		t.Errorf("metadata: %+v", res)
	}
}

func TestRender_Document(t *testing.T) {
	s := testService(t)
	res, err := s.Render(context.Background(), Request{
		HTML:     `<!DOCTYPE html><html><head><title>T</title></head><body><p id="x">old</p></body></html>`,
		Rules:    "rules:\n  - query: \"#x\"\n    content: new\n",
		Document: true,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(res.Output, `<p id="x">new</p>`) || !strings.HasPrefix(res.Output, "<!DOCTYPE html>") {
		t.Errorf("Output: got %q", res.Output)
	}
}

func TestRender_Markdown(t *testing.T) {
	s := testService(t)
	res, err := s.Render(context.Background(), Request{
		HTML:   `<h1>x</h1><p>body</p>`,
		Rules:  "rules:\n  - query: h1\n    content: Title\n",
		Format: FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(res.Output, "# Title") {
		t.Errorf("Output: got %q", res.Output)
	}
}

func TestRender_Template(t *testing.T) {
	s := testService(t)
	ctx := context.Background()
	if _, err := s.PutTemplate(ctx, "card", `<div class="card"><h2>t</h2><p class="body">b</p></div>`,
		"rules:\n  - query: h2\n    text: Hello\n"); err != nil {
		t.Fatalf("put: %v", err)
	}

	res, err := s.Render(ctx, Request{
		Template: "card",
		Rules:    "engine: htmlquery\nrules:\n  - query: .body\n    remove: true\n",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<div class="card">Hello</div>`; res.Output != want {
		t.Errorf("Output: got %q, want %q", res.Output, want)
	}
	if res.Engine != "htmlquery" || res.Rules != 2 {
		t.Errorf("metadata: %+v", res)
	}
}

func TestRender_DefaultEngine(t *testing.T) {
	s := testService(t, WithEngine("htmlquery"))
	res, err := s.Render(context.Background(), Request{
		HTML:  `<p>a</p>`,
		Rules: "rules:\n  - query: \"//p\"\n    text: b\n",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Output != "b" || res.Engine != "htmlquery" {
		t.Errorf("got %+v", res)
	}
}

func TestRender_RequestEngineOverridesRules(t *testing.T) {
	s := testService(t)
	res, err := s.Render(context.Background(), Request{
		HTML:   `<p>a</p>`,
		Rules:  "engine: css\nrules:\n  - query: \"./p\"\n    text: b\n",
		Engine: "htmlquery",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Output != "b" || res.Engine != "htmlquery" {
		t.Errorf("got %+v", res)
	}
}

func TestRender_Errors(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	var badReq *ErrBadRequest
	if _, err := s.Render(ctx, Request{}); !errors.As(err, &badReq) {
		t.Errorf("empty request: got %v, want *ErrBadRequest", err)
	}
	var format *ErrUnknownFormat
	if _, err := s.Render(ctx, Request{HTML: "x", Format: "pdf"}); !errors.As(err, &format) {
		t.Errorf("format: got %v, want *ErrUnknownFormat", err)
	}
	var notFound *ErrTemplateNotFound
	if _, err := s.Render(ctx, Request{Template: "nope"}); !errors.As(err, &notFound) {
		t.Errorf("template: got %v, want *ErrTemplateNotFound", err)
	}
	var invalid *rules.ErrInvalidRule
	if _, err := s.Render(ctx, Request{HTML: "x", Rules: "rules:\n  - query: p\n"}); !errors.As(err, &invalid) {
		t.Errorf("rule: got %v, want *rules.ErrInvalidRule", err)
	}
	var noStore *ErrNoStore
	if _, err := New(nil).Templates(ctx); !errors.As(err, &noStore) {
		t.Errorf("no store: got %v, want *ErrNoStore", err)
	}
	if _, err := s.PutTemplate(ctx, "bad", "x", "rules:\n  - query: p\n    text: a\n    remove: true\n"); !errors.As(err, &invalid) {
		t.Errorf("put invalid: got %v, want *rules.ErrInvalidRule", err)
	}
	if err := s.DeleteTemplate(ctx, "nope"); !errors.As(err, &notFound) {
		t.Errorf("delete: got %v, want *ErrTemplateNotFound", err)
	}
}

func TestRender_BrokenTemplateRules(t *testing.T) {
	ctx := context.Background()
	st := store.OpenMemory(t)
	if _, err := st.Put(ctx, "broken", "<p>x</p>", "rules: [unclosed"); err != nil {
		t.Fatalf("put: %v", err)
	}
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)), WithStore(st))

	_, err := s.Render(ctx, Request{Template: "broken"})
	var badReq *ErrBadRequest
	if !errors.As(err, &badReq) {
		t.Fatalf("got %v, want *ErrBadRequest", err)
	}
	if !strings.Contains(badReq.Reason, "broken") {
		t.Errorf("Reason: got %q, want the template name", badReq.Reason)
	}
	if got := statusFor(err); got != 400 {
		t.Errorf("status: got %d, want 400", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ErrBadRequest{Reason: "x"}, 400},
		{&rules.ErrInvalidRule{}, 400},
		{&ErrTemplateNotFound{Name: "x"}, 404},
		{&ErrNoStore{}, 501},
		{&fill.ErrDetachedNode{Node: "<p>"}, 422},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("%v: got %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domfill.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\nengine: htmlquery\nsanitize: true\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Engine != "htmlquery" || !cfg.Sanitize {
		t.Errorf("got %+v", cfg)
	}
	if cfg.DB != "data/domfill.db" {
		t.Errorf("DB default: got %q", cfg.DB)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level: got %v", cfg.Level())
	}

	def, err := LoadConfig("")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if def.Addr != ":8086" || def.Level() != slog.LevelInfo {
		t.Errorf("defaults: %+v", def)
	}
}
