package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pion/logging"
)

type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

func Configure(format Format, level slog.Level, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	ho := &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	}
	switch format {
	case JSONFormat:
		slog.SetDefault(slog.New(slog.NewJSONHandler(writer, ho)))
	case TextFormat:
		slog.SetDefault(slog.New(slog.NewTextHandler(writer, ho)))
	default:
		panic(fmt.Sprintf("unexpected logging.format: %#v", format))
	}
}

// ParseFormat validates a -log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case TextFormat, JSONFormat:
		return f, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}

// LoggerFactory hands out pion LeveledLoggers that write to the default
// slog logger, tagged with their scope.
type LoggerFactory struct{}

func (LoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &leveledLogger{sl: slog.Default().With("scope", scope)}
}

// NewLogger is shorthand for LoggerFactory{}.NewLogger(scope).
func NewLogger(scope string) logging.LeveledLogger {
	return LoggerFactory{}.NewLogger(scope)
}

type leveledLogger struct {
	sl *slog.Logger
}

// Trace implements logging.LeveledLogger.
func (l *leveledLogger) Trace(msg string) {
	l.sl.Debug(msg)
}

// Tracef implements logging.LeveledLogger.
func (l *leveledLogger) Tracef(format string, args ...any) {
	l.sl.Debug(fmt.Sprintf(format, args...))
}

// Debug implements logging.LeveledLogger.
func (l *leveledLogger) Debug(msg string) {
	l.sl.Debug(msg)
}

// Debugf implements logging.LeveledLogger.
func (l *leveledLogger) Debugf(format string, args ...any) {
	l.sl.Debug(fmt.Sprintf(format, args...))
}

// Info implements logging.LeveledLogger.
func (l *leveledLogger) Info(msg string) {
	l.sl.Info(msg)
}

// Infof implements logging.LeveledLogger.
func (l *leveledLogger) Infof(format string, args ...any) {
	l.sl.Info(fmt.Sprintf(format, args...))
}

// Warn implements logging.LeveledLogger.
func (l *leveledLogger) Warn(msg string) {
	l.sl.Warn(msg)
}

// Warnf implements logging.LeveledLogger.
func (l *leveledLogger) Warnf(format string, args ...any) {
	l.sl.Warn(fmt.Sprintf(format, args...))
}

// Error implements logging.LeveledLogger.
func (l *leveledLogger) Error(msg string) {
	l.sl.Error(msg)
}

// Errorf implements logging.LeveledLogger.
func (l *leveledLogger) Errorf(format string, args ...any) {
	l.sl.Error(fmt.Sprintf(format, args...))
}
