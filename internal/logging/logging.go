package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the application logger. Release builds log JSON so the output
// can be shipped as-is; everything else gets the human-readable formatter.
func New(level string, production bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, falling back to info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// Discard returns a logger that drops everything (used in tests)
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type entryKey struct{}

// WithEntry stores a request-scoped log entry in ctx
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryKey{}, entry)
}

// FromContext returns the request-scoped entry, or a fresh entry on logger.
// A nil logger falls back to the logrus standard logger.
func FromContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(entryKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logrus.NewEntry(logger)
}
