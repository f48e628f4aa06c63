package logger

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/Rohianon/equishare-dashboard/pkg/telemetry"
)

var Logger zerolog.Logger

// Init configures the global logger writing to stdout
func Init(serviceName string, level string, pretty bool) {
	InitWithWriter(os.Stdout, serviceName, level, pretty)
}

// InitWithWriter configures the global logger writing to w. The CLI logs to
// stderr so rendered tables stay clean on stdout.
func InitWithWriter(w io.Writer, serviceName string, level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	if pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	Logger = zerolog.New(w).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// WithContext returns the global logger annotated with the trace id of ctx
func WithContext(ctx context.Context) zerolog.Logger {
	if id := telemetry.TraceID(ctx); id != "" {
		return Logger.With().Str("trace_id", id).Logger()
	}
	return Logger
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Info() *zerolog.Event {
	return Logger.Info()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
