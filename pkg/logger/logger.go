package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Config contains logger configuration options.
type Config struct {
	// Level is the minimum level to log (debug, info, warn, error).
	Level string
	// JSON enables JSON formatting instead of text.
	JSON bool
	// Output is where logs are written (defaults to os.Stderr).
	Output io.Writer
	// AddSource adds source code information to logs.
	AddSource bool
}

// DefaultConfig returns the production defaults: info level, JSON output.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		JSON:   true,
		Output: os.Stderr,
	}
}

// Logger wraps slog for structured logging.
type Logger struct {
	*slog.Logger
	config Config
}

var global *Logger

// New creates a logger with the given configuration.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	var level slog.Level
	switch config.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: config.AddSource}
	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	l := &Logger{Logger: slog.New(handler), config: config}
	if global == nil {
		global = l
	}
	return l
}

// SetGlobal sets the global logger instance.
func SetGlobal(l *Logger) {
	global = l
}

// GetGlobal returns the global logger instance, creating a default one if
// none has been configured yet.
func GetGlobal() *Logger {
	if global == nil {
		global = New(DefaultConfig())
	}
	return global
}

// LogError logs an error with additional context fields.
func (l *Logger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append([]any{"error", err.Error()}, args...)...)
}

// WithRequestID returns a logger scoped to one request.
func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return &Logger{Logger: l.With("request_id", requestID), config: l.config}
}

// WithAccount returns a logger scoped to an authenticated account.
func (l *Logger) WithAccount(accountType string, accountID uint) *Logger {
	return &Logger{
		Logger: l.With("account_type", accountType, "account_id", accountID),
		config: l.config,
	}
}

// LogRequest logs one completed HTTP request.
func (l *Logger) LogRequest(method, path string, status int, latency time.Duration) {
	l.Info("request completed",
		"method", method,
		"path", path,
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
}
