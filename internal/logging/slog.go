package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// InstrumentationName is the OTel logger name used by the slog bridge.
const InstrumentationName = "vorfahrt"

// console receives records when no log file is open.
var console io.Writer = os.Stdout

// SlogManager owns the generator's logger. Records go to the session log
// (or the console) and, when telemetry is on, through the OTel bridge.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
	attrs       ContextProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel accepts slog's level names in any case, including offsets such
// as "warn+2". Anything else logs at info.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// utcTime renders the record time as RFC3339 in UTC.
func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// SetContextProvider registers attributes added to every record, e.g. the
// puzzle currently being generated. Takes effect on the next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.attrs = p
}

// Setup replaces the logger. A nil file logs to the console.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	if file == nil {
		file = console
	}
	m.logProvider = provider

	text := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: utcTime,
	})
	var handler slog.Handler = text
	if provider != nil {
		handler = NewMultiHandler(text, otelslog.NewHandler(InstrumentationName, otelslog.WithLoggerProvider(provider)))
	}
	if m.attrs != nil {
		handler = NewContextHandler(handler, m.attrs)
	}

	m.logger = slog.New(handler)
	m.logger.Debug("Logging initialized", "level", level)
}

// Logger returns slog.Default until Setup has run.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes batched OTel records to the exporter.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}
