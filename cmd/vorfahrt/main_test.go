package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/config"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/export"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/render"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestGenerate_WritesSVGAndJSON(t *testing.T) {
	dir := t.TempDir()
	var progress atomic.Int64

	paths, err := generate(generateParams{
		Puzzle:    config.PuzzleConfig{Seed: 3, Count: 2},
		Export:    config.ExportConfig{Enabled: true},
		Render:    render.DefaultOptions(),
		OutputDir: dir,
		Logger:    discardLogger(),
		Progress:  &progress,
	})
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, int64(2), progress.Load())

	for i := 0; i < len(paths); i += 2 {
		svgPath, jsonPath := paths[i], paths[i+1]
		assert.True(t, strings.HasSuffix(svgPath, ".svg"))
		assert.True(t, strings.HasSuffix(jsonPath, ".json"))

		svg, err := os.ReadFile(svgPath)
		require.NoError(t, err)
		assert.Contains(t, string(svg), "<svg")

		raw, err := os.ReadFile(jsonPath)
		require.NoError(t, err)
		var doc export.Document
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, filepath.Base(svgPath), doc.SVG)
		assert.Equal(t, strings.TrimSuffix(filepath.Base(svgPath), ".svg"), doc.ID)
		assert.GreaterOrEqual(t, len(doc.Cars), 2)
	}
}

func TestGenerate_FixedShape(t *testing.T) {
	dir := t.TempDir()

	paths, err := generate(generateParams{
		Puzzle:    config.PuzzleConfig{Seed: 8, Count: 3, Sides: 4, Cars: 4},
		Export:    config.ExportConfig{Enabled: true, Compress: true},
		Render:    render.DefaultOptions(),
		OutputDir: dir,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	require.Len(t, paths, 6)
	for i := 1; i < len(paths); i += 2 {
		assert.True(t, strings.HasSuffix(paths[i], ".json.gz"))
	}
}

func TestGenerate_SVGOnly(t *testing.T) {
	dir := t.TempDir()

	paths, err := generate(generateParams{
		Puzzle:    config.PuzzleConfig{Count: 1},
		Render:    render.DefaultOptions(),
		OutputDir: dir,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_InvalidShape(t *testing.T) {
	dir := t.TempDir()

	paths, err := generate(generateParams{
		Puzzle:    config.PuzzleConfig{Count: 1, Sides: 2, Cars: 3},
		Render:    render.DefaultOptions(),
		OutputDir: dir,
		Logger:    discardLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed")
	assert.Empty(t, paths)
}

func TestGenerate_ZeroCount(t *testing.T) {
	_, err := generate(generateParams{
		Puzzle:    config.PuzzleConfig{Count: 0},
		OutputDir: t.TempDir(),
		Logger:    discardLogger(),
	})
	assert.Error(t, err)
}

func TestRun_FlagsOverrideDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	configDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	var stdout bytes.Buffer

	err := run([]string{
		"--config", configDir,
		"--outputDir", outDir,
		"--logsDir", "",
		"--logLevel", "error",
		"--puzzle.count", "2",
		"--puzzle.seed", "42",
		"--export.json=false",
	}, &stdout)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	var svgs []string
	for _, l := range lines {
		if strings.HasSuffix(l, ".svg") {
			svgs = append(svgs, l)
		}
	}
	assert.Len(t, svgs, 2)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRun_ConfigFileAndLogFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	configDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	logsDir := filepath.Join(t.TempDir(), "logs")

	cfg := `{"outputDir": "` + filepath.ToSlash(outDir) + `", "logsDir": "` + filepath.ToSlash(logsDir) + `", "puzzle": {"count": 1, "sides": 3, "cars": 2}}`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.FileName), []byte(cfg), 0644))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"--config", configDir}, &stdout))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "svg and json")

	logs, err := os.ReadDir(logsDir)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	content, err := os.ReadFile(filepath.Join(logsDir, logs[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Puzzle written")
	assert.Contains(t, string(content), "puzzle=1")
}

func TestRun_UnknownFlag(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := run([]string{"--nope"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_OTelMetricsInLogFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	configDir := t.TempDir()
	logsDir := filepath.Join(t.TempDir(), "logs")
	cfg := `{"logsDir": "` + filepath.ToSlash(logsDir) + `", "otel": {"enabled": true}}`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.FileName), []byte(cfg), 0644))

	err := run([]string{
		"--config", configDir,
		"--outputDir", filepath.Join(t.TempDir(), "out"),
		"--puzzle.seed", "5",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	logs, err := os.ReadDir(logsDir)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	content, err := os.ReadFile(filepath.Join(logsDir, logs[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "puzzle.signs.generated")
}

func TestRun_TelemetryStaysOffStdout(t *testing.T) {
	t.Cleanup(viper.Reset)

	var telemetry bytes.Buffer
	orig := telemetryOut
	telemetryOut = &telemetry
	t.Cleanup(func() { telemetryOut = orig })

	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.FileName), []byte(`{"otel": {"enabled": true}}`), 0644))

	var stdout bytes.Buffer
	err := run([]string{
		"--config", configDir,
		"--outputDir", filepath.Join(t.TempDir(), "out"),
		"--logsDir", "",
		"--logLevel", "error",
		"--puzzle.seed", "5",
	}, &stdout)
	require.NoError(t, err)

	for _, l := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		assert.Regexp(t, `\.(svg|json)$`, l)
	}
	assert.Contains(t, telemetry.String(), "puzzle.signs.generated")
}

func TestRun_ExportPNG(t *testing.T) {
	t.Cleanup(viper.Reset)

	outDir := filepath.Join(t.TempDir(), "out")
	var stdout bytes.Buffer
	err := run([]string{
		"--config", t.TempDir(),
		"--outputDir", outDir,
		"--logsDir", "",
		"--logLevel", "error",
		"--puzzle.seed", "11",
		"--export.json=false",
		"--export.png",
	}, &stdout)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], ".svg"))
	require.True(t, strings.HasSuffix(lines[1], ".png"))
	assert.Equal(t, strings.TrimSuffix(lines[0], ".svg"), strings.TrimSuffix(lines[1], ".png"))

	raw, err := os.ReadFile(lines[1])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}
