// Package analyzer wires the parser tiers and the classifier stack into the
// engine's public entry points.
package analyzer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"semdiff/internal/core/config"
	"semdiff/internal/layers"
	"semdiff/internal/llm"
	"semdiff/internal/parser"
	"semdiff/internal/semantic"
	"semdiff/internal/shared/observability"
	"semdiff/internal/shared/util"
)

// FileChange is one before/after pair submitted for analysis.
type FileChange struct {
	Path   string
	Before string
	After  string
}

// FileResult pairs a path with the events its change produced.
type FileResult struct {
	Path   string           `json:"path"`
	Events []semantic.Event `json:"events"`
}

// Engine owns all per-run state. Construct once, share freely: analysis holds
// no mutable state beyond the metrics registry.
type Engine struct {
	cfg      *config.Config
	parser   *parser.Parser
	stack    []layers.Differ
	advisor  *llm.Advisor
	excludes []glob.Glob
}

func NewEngine(cfg *config.Config, p *parser.Parser, registry *llm.Registry) (*Engine, error) {
	excludes := make([]glob.Glob, 0, len(cfg.Exclude.Paths))
	for _, pattern := range cfg.Exclude.Paths {
		g, err := glob.Compile(util.NormalizePatternPath(pattern), '/')
		if err != nil {
			slog.Warn("invalid exclude pattern skipped", "pattern", pattern, "error", err)
			continue
		}
		excludes = append(excludes, g)
	}

	return &Engine{
		cfg:      cfg,
		parser:   p,
		stack:    layers.DeterministicStack(),
		advisor:  llm.NewAdvisor(cfg.LLM, registry),
		excludes: excludes,
	}, nil
}

// AnalyzeFileChange classifies one change. Identical texts and excluded paths
// yield nil. Failures inside individual layers are isolated; the remaining
// layers still run.
func (e *Engine) AnalyzeFileChange(ctx context.Context, path, before, after string) []semantic.Event {
	if before == after {
		return nil
	}
	if e.isExcluded(path) {
		slog.Debug("path excluded from analysis", "path", path)
		return nil
	}

	beforeParsed := e.parser.Parse(ctx, path, before)
	afterParsed := e.parser.Parse(ctx, path, after)

	dc := layers.DiffContext{
		Path:        path,
		BeforeText:  before,
		AfterText:   after,
		BeforeNodes: beforeParsed.Nodes,
		AfterNodes:  afterParsed.Nodes,
		BeforeDeps:  beforeParsed.Dependencies,
		AfterDeps:   afterParsed.Dependencies,
	}

	var events []semantic.Event
	for _, layer := range e.stack {
		events = append(events, e.runLayer(layer, dc)...)
	}
	events = append(events, e.runAdvisory(ctx, dc)...)
	return events
}

// runLayer isolates one deterministic layer: a panic is logged and swallowed
// so partial results survive.
func (e *Engine) runLayer(layer layers.Differ, dc layers.DiffContext) (events []semantic.Event) {
	defer func() {
		if r := recover(); r != nil {
			observability.LayerFailures.WithLabelValues(layer.Name()).Inc()
			slog.Error("layer panicked, continuing with remaining layers",
				"layer", layer.Name(), "path", dc.Path, "panic", r)
			events = nil
		}
	}()

	start := time.Now()
	events = layer.Diff(dc)
	observability.AnalysisDuration.WithLabelValues(layer.Name()).Observe(time.Since(start).Seconds())
	observability.EventsEmitted.WithLabelValues(layer.Name()).Add(float64(len(events)))
	return events
}

func (e *Engine) runAdvisory(ctx context.Context, dc layers.DiffContext) (events []semantic.Event) {
	defer func() {
		if r := recover(); r != nil {
			observability.LayerFailures.WithLabelValues(e.advisor.Name()).Inc()
			slog.Error("advisory layer panicked", "path", dc.Path, "panic", r)
			events = nil
		}
	}()

	start := time.Now()
	events = e.advisor.Diff(ctx, dc)
	observability.AnalysisDuration.WithLabelValues(e.advisor.Name()).Observe(time.Since(start).Seconds())
	observability.EventsEmitted.WithLabelValues(e.advisor.Name()).Add(float64(len(events)))
	return events
}

// AnalyzeChanges fans one batch out across a bounded worker pool. Results come
// back in input order; a slow provider call on one file never blocks another
// file's deterministic layers.
func (e *Engine) AnalyzeChanges(ctx context.Context, changes []FileChange) []FileResult {
	workers := e.cfg.Engine.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]FileResult, len(changes))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				change := changes[i]
				results[i] = FileResult{
					Path:   change.Path,
					Events: e.AnalyzeFileChange(ctx, change.Path, change.Before, change.After),
				}
			}
		}()
	}

	for i := range changes {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (e *Engine) isExcluded(path string) bool {
	normalized := util.NormalizePatternPath(path)
	for _, g := range e.excludes {
		if g.Match(normalized) {
			return true
		}
	}
	return false
}
