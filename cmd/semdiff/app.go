package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"semdiff/internal/analyzer"
	"semdiff/internal/core/config"
	"semdiff/internal/core/errors"
	"semdiff/internal/llm"
	"semdiff/internal/parser"
	"semdiff/internal/watcher"
)

// App wires the parser, provider registry and engine together once and serves
// both invocation modes.
type App struct {
	cfg    *config.Config
	parser *parser.Parser
	engine *analyzer.Engine
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	p, err := parser.NewParser()
	if err != nil {
		return nil, err
	}

	var registry *llm.Registry
	if cfg.LLM.Enabled {
		registry = llm.NewRegistry(ctx, cfg)
		slog.Info("llm advisory enabled", "providers", registry.Len())
	} else {
		registry = &llm.Registry{}
	}

	engine, err := analyzer.NewEngine(cfg, p, registry)
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, parser: p, engine: engine}
	app.maybeServeMetrics()
	return app, nil
}

func (a *App) maybeServeMetrics() {
	if !a.cfg.Metrics.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              a.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics endpoint listening", "address", a.cfg.Metrics.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
}

// RunDiff analyzes one before/after file pair and writes the events as JSON
// to stdout.
func (a *App) RunDiff(ctx context.Context, beforePath, afterPath, logicalPath string) error {
	before, err := readFileAllowMissing(beforePath)
	if err != nil {
		return err
	}
	after, err := readFileAllowMissing(afterPath)
	if err != nil {
		return err
	}
	if logicalPath == "" {
		logicalPath = afterPath
	}

	events := a.engine.AnalyzeFileChange(ctx, logicalPath, before, after)
	return a.writeResult(analyzer.FileResult{Path: logicalPath, Events: events})
}

// RunWatch streams results for file changes under the configured paths until
// the context is cancelled.
func (a *App) RunWatch(ctx context.Context) error {
	paths := a.cfg.Watch.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	w, err := watcher.NewWatcher(a.engine, a.parser, a.cfg.Watch.Debounce, func(result analyzer.FileResult) {
		if err := a.writeResult(result); err != nil {
			slog.Error("failed to write result", "path", result.Path, "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(ctx, paths); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", paths)
	<-ctx.Done()
	return nil
}

func (a *App) writeResult(result analyzer.FileResult) error {
	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

// readFileAllowMissing treats an absent file as empty content, so additions
// and removals can be expressed by pointing one side at a missing path.
func readFileAllowMissing(path string) (string, error) {
	if path == "" || path == "-" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "failed to read file"),
			errors.CtxPath, path)
	}
	return string(content), nil
}
