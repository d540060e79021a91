// Command domfill fills HTML with declarative selector rules.
//
// Usage:
//
//	domfill render -in page.html -rules rules.yaml [-engine htmlquery] [-format markdown] [-document]
//	domfill serve -config domfill.yaml      # HTTP API
//	domfill mcp -config domfill.yaml        # MCP over stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domfill/render"
	"github.com/hazyhaar/domfill/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "mcp":
		err = runMCP(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("domfill: fatal", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: domfill render -in <file> -rules <file> | serve -config <file> | mcp -config <file>")
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	in := fs.String("in", "-", "HTML input file, - for stdin")
	rulesPath := fs.String("rules", "", "YAML rules file")
	engine := fs.String("engine", "", "selector engine: css, htmlquery (overrides the rules file)")
	format := fs.String("format", render.FormatHTML, "output format: html, markdown")
	document := fs.Bool("document", false, "parse input as a full document")
	sanitize := fs.Bool("sanitize", false, "sanitize html rule fragments")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	fs.Parse(args)

	cfg := &render.Config{LogLevel: *logLevel}
	logger := newLogger(cfg.Level())

	src, err := readInput(*in)
	if err != nil {
		return err
	}
	var ruleSrc []byte
	if *rulesPath != "" {
		if ruleSrc, err = os.ReadFile(*rulesPath); err != nil {
			return fmt.Errorf("read rules: %w", err)
		}
	}

	svc := render.New(logger, render.WithSanitize(*sanitize))
	res, err := svc.Render(ctx, render.Request{
		HTML:     string(src),
		Rules:    string(ruleSrc),
		Engine:   *engine,
		Document: *document,
		Format:   *format,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(os.Stdout, res.Output)
	return err
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// openService loads the config, opens the template store and builds the
// service. The returned closer releases the store.
func openService(args []string, name string) (*render.Service, *render.Config, func(), error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "path to domfill.yaml config file")
	fs.Parse(args)

	cfg, err := render.LoadConfig(*configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg.Level())

	st, err := store.Open(cfg.DB, store.WithMkdirAll())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	svc := render.New(logger,
		render.WithStore(st),
		render.WithEngine(cfg.Engine),
		render.WithSanitize(cfg.Sanitize),
	)
	return svc, cfg, func() { st.Close() }, nil
}

func runServe(ctx context.Context, args []string) error {
	svc, cfg, closeStore, err := openService(args, "serve")
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("domfill: listening", "addr", cfg.Addr, "db", cfg.DB, "engine", cfg.Engine)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, args []string) error {
	svc, _, closeStore, err := openService(args, "mcp")
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(&mcp.Implementation{Name: "domfill", Version: "1.0.0"}, nil)
	svc.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}
