package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type contextKey string

// ContextKeyLogger is the context key WithContext/FromContext use.
const ContextKeyLogger contextKey = "logger"

// Logger wraps slog.Logger with tiniflow-specific chain methods.
type Logger struct {
	logger *slog.Logger
}

// Config configures a Logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error" (default "info").
	Level string
	// Output is where logs are written (default os.Stderr, so stdout
	// stays free for the transpiler's generated program).
	Output io.Writer
	// Pretty selects a human-readable text handler instead of JSON.
	Pretty bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{Level: "info", Output: os.Stderr}
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext attaches l to ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, l)
}

// FromContext retrieves the Logger stashed in ctx, or a default one.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ContextKeyLogger).(*Logger); ok {
		return l
	}
	return New(DefaultConfig())
}

// WithExecutionID scopes subsequent log lines to one Executor.Run invocation.
func (l *Logger) WithExecutionID(id string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("execution_id", id))}
}

// WithNode scopes subsequent log lines to one node's (possibly
// already-rewritten) contents.
func (l *Logger) WithNode(contents string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("node", contents))}
}

// WithPID scopes subsequent log lines to one child process.
func (l *Logger) WithPID(pid int) *Logger {
	return &Logger{logger: l.logger.With(slog.Int("pid", pid))}
}

// WithChannel scopes subsequent log lines to a named channel (TF_DATA or
// TF_CTRL).
func (l *Logger) WithChannel(name string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("channel", name))}
}

// WithField adds an arbitrary key/value field (LoggingObserver uses it for
// a non-zero exit code).
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{logger: l.logger.With(slog.Any(key, value))}
}

// WithError adds an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With(slog.Any("error", err))}
}

func (l *Logger) Debug(msg string)                          { l.logger.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logger.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Info(msg string)                           { l.logger.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(msg string)                           { l.logger.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logger.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Error(msg string)                          { l.logger.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logger.Error(fmt.Sprintf(format, args...)) }

// GetSlogLogger returns the underlying *slog.Logger for advanced use.
func (l *Logger) GetSlogLogger() *slog.Logger {
	return l.logger
}
