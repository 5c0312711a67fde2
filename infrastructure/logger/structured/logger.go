// ABOUTME: Logger implementation backed by logrus with optional rotating file output
// ABOUTME: Maps the core Logger contract onto logrus levels and fields

package structured

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a Logger
type Options struct {
	// Level is one of debug, info, warn, error
	Level string

	// Format is text or json
	Format string

	// File enables rotating file output when set
	File string

	// MaxSizeMB is the rotation threshold
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept
	MaxBackups int
}

// Logger implements interfaces.Logger
type Logger struct {
	entry  *logrus.Logger
	closer io.Closer
}

// New builds a logger from options
func New(opts Options) (*Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(defaultString(opts.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	l.SetLevel(level)

	switch strings.ToLower(defaultString(opts.Format, "text")) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	logger := &Logger{entry: l}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     28,
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(os.Stdout, rotator))
		logger.closer = rotator
	} else {
		l.SetOutput(os.Stdout)
	}

	return logger, nil
}

// NewWithWriter builds a logger writing to w, used by tests and the CLI
func NewWithWriter(w io.Writer, level logrus.Level, json bool) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Logger{entry: l}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Error(msg)
}

// Close releases the rotating file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
