package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/config"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/logging"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/puzzle"
	intOtel "github.com/werhatvorfahrt/werhatvorfahrt/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "vorfahrt"
)

// telemetryOut receives OTel output when no log file is open. stdout carries
// the written paths, so it must stay clean.
var telemetryOut io.Writer = os.Stderr

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.String("config", ".", "directory containing "+config.FileName)
	flags.String("outputDir", "./puzzles", "directory the puzzles are written to")
	flags.String("logsDir", "./logs", "directory for log files; empty logs to stdout")
	flags.String("logLevel", "info", "debug, info, warn or error")
	flags.Int("puzzle.count", 1, "number of puzzles to generate")
	flags.Uint64("puzzle.seed", 0, "seed for reproducible puzzles; 0 picks a random one")
	flags.Int("puzzle.sides", 0, "roads per intersection (2-4); 0 picks at random")
	flags.Int("puzzle.cars", 0, "cars per intersection (2-4); 0 picks at random")
	flags.Bool("export.json", true, "write a JSON document next to each SVG")
	flags.Bool("export.compress", false, "gzip the JSON documents")
	flags.Bool("export.png", false, "also write a PNG raster at render.dpi")
	return flags
}

// run is main without the process exit, so it can be tested.
func run(args []string, stdout io.Writer) error {
	sessionStart := time.Now()

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return err
	}
	configDir, _ := flags.GetString("config")

	if err := config.Load(configDir); err != nil {
		return err
	}
	if err := config.BindFlags(flags); err != nil {
		return err
	}

	// nil logs to the console
	var logOut io.Writer
	otelWriter := telemetryOut
	if logsDir := config.GetString("logsDir"); logsDir != "" {
		f, err := logging.OpenLogFile(logsDir, AppName, sessionStart)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut, otelWriter = f, f
	}

	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		Writer:       otelWriter,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}()

	var current atomic.Int64
	slogManager := logging.NewSlogManager()
	slogManager.SetContextProvider(func() []slog.Attr {
		if n := current.Load(); n > 0 {
			return []slog.Attr{slog.Int64("puzzle", n)}
		}
		return nil
	})
	slogManager.Setup(logOut, config.GetString("logLevel"), provider.LoggerProvider())
	logger := slogManager.Logger()
	logger.Info("Starting up...", "version", CurrentVersion, "build", BuildDate, "otel", provider.Enabled())

	paths, err := generate(generateParams{
		Puzzle:    config.GetPuzzleConfig(),
		Export:    config.GetExportConfig(),
		Render:    config.GetRenderOptions(),
		OutputDir: config.GetString("outputDir"),
		Logger:    logger,
		Meter:     provider.Meter(puzzle.InstrumentationName),
		Progress:  &current,
	})
	if err != nil {
		logger.Error("Generation failed", "error", err)
		return err
	}

	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}

	logger.Info("Finished", "files", len(paths), "duration", time.Since(sessionStart))
	ctx := context.Background()
	if err := slogManager.Flush(ctx); err != nil {
		return err
	}
	return provider.Flush(ctx)
}
