// Package watcher re-analyzes files as they change on disk. It keeps the last
// seen content per path and feeds old/new pairs to the analysis engine; it
// contains no diffing logic of its own.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"semdiff/internal/analyzer"
	"semdiff/internal/parser"
	"semdiff/internal/shared/observability"
)

const maxWatchedFileBytes = 4 << 20

// Watcher debounces file system events and replays each settled change
// through the engine.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	engine    *analyzer.Engine
	parser    *parser.Parser
	debounce  time.Duration
	onResult  func(analyzer.FileResult)

	lastSeen   map[string]string
	lastSeenMu sync.Mutex

	pending   map[string]bool
	pendingMu sync.Mutex
	timer     *time.Timer
}

func NewWatcher(engine *analyzer.Engine, p *parser.Parser, debounce time.Duration, onResult func(analyzer.FileResult)) (*Watcher, error) {
	if onResult == nil {
		return nil, os.ErrInvalid
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsw,
		engine:    engine,
		parser:    p,
		debounce:  debounce,
		onResult:  onResult,
		lastSeen:  make(map[string]string),
		pending:   make(map[string]bool),
	}, nil
}

// Watch registers paths recursively, snapshots current content, and starts the
// event loop. It returns once registration completes.
func (w *Watcher) Watch(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if base := filepath.Base(path); base == ".git" || base == "node_modules" || base == "vendor" {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if w.parser.IsSupportedPath(path) && info.Size() <= maxWatchedFileBytes {
			w.snapshot(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchRecursive(event.Name); err != nil {
						slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !w.parser.IsSupportedPath(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(ctx, event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(ctx context.Context, path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges(ctx)
	})
}

func (w *Watcher) flushChanges(ctx context.Context) {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	for _, path := range paths {
		before, after := w.advance(path)
		if before == after {
			continue
		}
		events := w.engine.AnalyzeFileChange(ctx, path, before, after)
		if len(events) == 0 {
			continue
		}
		w.onResult(analyzer.FileResult{Path: path, Events: events})
	}
}

// advance swaps the stored snapshot for the file's current content and
// returns both. A deleted file reads as empty, which the structural layer
// reports as a removal.
func (w *Watcher) advance(path string) (before, after string) {
	content, err := os.ReadFile(path)
	if err != nil {
		content = nil
	}
	after = string(content)

	w.lastSeenMu.Lock()
	defer w.lastSeenMu.Unlock()
	before = w.lastSeen[path]
	if after == "" {
		delete(w.lastSeen, path)
	} else {
		w.lastSeen[path] = after
	}
	return before, after
}

func (w *Watcher) snapshot(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	w.lastSeenMu.Lock()
	w.lastSeen[path] = string(content)
	w.lastSeenMu.Unlock()
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
