package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Interface defines the logging interface used throughout the application
type Interface interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(key string, value interface{}) Interface
	WithFields(fields map[string]interface{}) Interface
	WithError(err error) Interface
}

// Logger wraps a logrus entry to provide a common interface across the application
type Logger struct {
	entry *logrus.Entry
}

// Config contains logging configuration
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
	Output string `yaml:"output"` // "stdout", "stderr", or file path
}

// New creates a new structured logger with the given configuration
func New(config Config) (*Logger, error) {
	level, err := parseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}

	var output io.Writer
	switch config.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", config.Output, err)
		}
		output = file
	}

	base := logrus.New()
	base.SetOutput(output)
	base.SetLevel(level)
	base.SetReportCaller(level == logrus.DebugLevel)

	switch strings.ToLower(config.Format) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unsupported log format '%s'", config.Format)
	}

	return &Logger{entry: logrus.NewEntry(base)}, nil
}

// FromLogrus wraps an existing logrus logger
func FromLogrus(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

// parseLevel converts a string level to a logrus level, defaulting to info
func parseLevel(levelStr string) (logrus.Level, error) {
	if levelStr == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(strings.ToLower(levelStr))
}

// Logrus exposes the underlying logrus logger for libraries that need it directly
func (l *Logger) Logrus() *logrus.Logger {
	return l.entry.Logger
}

// IsDebug reports whether debug logging is enabled
func (l *Logger) IsDebug() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

// WithFields returns a logger with the given fields added to all log entries
func (l *Logger) WithFields(fields map[string]interface{}) Interface {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithField returns a logger with a single field added to all log entries
func (l *Logger) WithField(key string, value interface{}) Interface {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a logger with error field added
func (l *Logger) WithError(err error) Interface {
	return &Logger{entry: l.entry.WithError(err)}
}

// Debug logs at debug level; args are key/value pairs
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.withArgs(args).Debug(msg)
}

// Info logs at info level; args are key/value pairs
func (l *Logger) Info(msg string, args ...interface{}) {
	l.withArgs(args).Info(msg)
}

// Warn logs at warn level; args are key/value pairs
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.withArgs(args).Warn(msg)
}

// Error logs at error level; args are key/value pairs
func (l *Logger) Error(msg string, args ...interface{}) {
	l.withArgs(args).Error(msg)
}

// Debugf logs at debug level with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Infof logs at info level with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warnf logs at warn level with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Errorf logs at error level with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Fatalf logs at fatal level and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

// withArgs turns slog-style alternating key/value args into logrus fields.
// A trailing key without a value is kept under "!BADKEY", as slog does.
func (l *Logger) withArgs(args []interface{}) *logrus.Entry {
	if len(args) == 0 {
		return l.entry
	}
	fields := make(logrus.Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			fields["!BADKEY"] = args[i]
			continue
		}
		fields[key] = args[i+1]
	}
	return l.entry.WithFields(fields)
}

// Default creates a default logger for the application
func Default() *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: logrus.NewEntry(base)}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

// SetDefault makes logger's configuration the standard logrus logger's configuration
func SetDefault(logger *Logger) {
	std := logrus.StandardLogger()
	std.SetOutput(logger.entry.Logger.Out)
	std.SetLevel(logger.entry.Logger.GetLevel())
	std.SetFormatter(logger.entry.Logger.Formatter)
}
