package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/werhatvorfahrt/werhatvorfahrt/internal/config"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/export"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/puzzle"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/render"
	"go.opentelemetry.io/otel/metric"
)

type generateParams struct {
	Puzzle    config.PuzzleConfig
	Export    config.ExportConfig
	Render    render.Options
	OutputDir string
	Logger    *slog.Logger
	// Meter records the generator counters; nil uses the global meter.
	Meter metric.Meter

	// Progress receives the 1-based index of the puzzle being built.
	Progress *atomic.Int64
}

// generate builds Puzzle.Count signs and writes an SVG for each, plus a PNG
// and a JSON document when enabled. It returns the written paths in order.
func generate(p generateParams) ([]string, error) {
	if p.Puzzle.Count < 1 {
		return nil, fmt.Errorf("puzzle count must be at least 1, got %d", p.Puzzle.Count)
	}

	opts := []puzzle.Option{puzzle.WithLogger(p.Logger)}
	if p.Meter != nil {
		opts = append(opts, puzzle.WithMeter(p.Meter))
	}
	if p.Puzzle.Seed != 0 {
		opts = append(opts, puzzle.WithSeed(p.Puzzle.Seed))
	}
	gen, err := puzzle.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for i := 1; i <= p.Puzzle.Count; i++ {
		if p.Progress != nil {
			p.Progress.Store(int64(i))
		}

		nSides, nCars := puzzle.ResolveShape(gen.Rand(), p.Puzzle.Sides, p.Puzzle.Cars)
		sign, err := gen.NewSign(nSides, nCars)
		if err != nil {
			return paths, err
		}

		doc, err := export.NewDocument(sign)
		if err != nil {
			return paths, err
		}

		fig := render.Render(sign, p.Render)
		svgPath := filepath.Join(p.OutputDir, doc.ID+".svg")
		if err := writeFigure(svgPath, fig.WriteSVG); err != nil {
			return paths, err
		}
		paths = append(paths, svgPath)

		if p.Export.PNG {
			pngPath := filepath.Join(p.OutputDir, doc.ID+".png")
			if err := writeFigure(pngPath, fig.WritePNG); err != nil {
				return paths, err
			}
			paths = append(paths, pngPath)
		}

		if p.Export.Enabled {
			doc.SVG = filepath.Base(svgPath)
			jsonPath, err := export.Write(p.OutputDir, doc, p.Export.Compress)
			if err != nil {
				return paths, err
			}
			paths = append(paths, jsonPath)
		}

		p.Logger.Info("Puzzle written", "id", doc.ID, "sides", sign.Sides, "cars", len(sign.Cars))
	}
	return paths, nil
}

func writeFigure(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
