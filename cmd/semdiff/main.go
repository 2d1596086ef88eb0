package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"semdiff/internal/core/config"
)

var (
	configPath = flag.String("config", "./semdiff.toml", "Path to config file")
	watch      = flag.Bool("watch", false, "Watch configured paths and stream events")
	pathArg    = flag.String("path", "", "Logical path recorded in events (defaults to the after file)")
	pretty     = flag.Bool("pretty", false, "Indent JSON output")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("semdiff v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if *watch {
		if err := app.RunWatch(ctx); err != nil {
			slog.Error("watch mode failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: semdiff [flags] <before-file> <after-file>")
		fmt.Fprintln(os.Stderr, "       semdiff [flags] -watch")
		os.Exit(2)
	}

	if err := app.RunDiff(ctx, flag.Arg(0), flag.Arg(1), *pathArg); err != nil {
		slog.Error("diff failed", "error", err)
		os.Exit(1)
	}
}
