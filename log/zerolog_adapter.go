package log

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// zerologAdapter wraps a zerolog.Logger to implement Logger.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger writing to stderr, as JSON or in the
// human-readable console format.
func NewZerologAdapter(level zerolog.Level, pretty bool) Logger {
	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewZerologAdapterWriter(out, level)
}

// NewZerologAdapterWriter creates a JSON Logger on w.
func NewZerologAdapterWriter(w io.Writer, level zerolog.Level) Logger {
	return &zerologAdapter{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// Setup configures zerolog's global logger the same way as the adapter and
// returns the adapter.
func Setup(level string, pretty bool) Logger {
	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	adapter := NewZerologAdapter(lvl, pretty)
	GlobalFrom(adapter)

	return adapter
}

// GlobalFrom points the zerolog global logger at the adapter's output.
func GlobalFrom(l Logger) {
	if z, ok := l.(*zerologAdapter); ok {
		zlog.Logger = z.logger
	}
}

// ParseLevel maps a config value to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// withTrace adds trace_id and span_id when ctx carries a valid span.
func withTrace(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if ctx == nil {
		return event
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		event = event.Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String())
	}
	return event
}

func emit(ctx context.Context, event *zerolog.Event, msg string, fields []Fields) {
	event = withTrace(ctx, event)
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

func (z *zerologAdapter) Debug(ctx context.Context, msg string, fields ...Fields) {
	emit(ctx, z.logger.Debug(), msg, fields)
}

func (z *zerologAdapter) Info(ctx context.Context, msg string, fields ...Fields) {
	emit(ctx, z.logger.Info(), msg, fields)
}

func (z *zerologAdapter) Warn(ctx context.Context, msg string, fields ...Fields) {
	emit(ctx, z.logger.Warn(), msg, fields)
}

func (z *zerologAdapter) Error(ctx context.Context, msg string, err error, fields ...Fields) {
	emit(ctx, z.logger.Error().Err(err), msg, fields)
}

// With returns a child logger. Trace ids are added per call, never stored.
func (z *zerologAdapter) With(fields Fields) Logger {
	return &zerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}
