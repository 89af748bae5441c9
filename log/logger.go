package log

import "context"

// Fields is a set of structured key/value pairs attached to a log line.
type Fields = map[string]interface{}

// Logger is the logging surface handed to transport code (the HTTP access log,
// the sync worker). Services log through zerolog's global logger directly.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	With(fields Fields) Logger
}
