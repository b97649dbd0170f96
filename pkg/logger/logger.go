package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging interface used throughout teto. Every
// component takes one by constructor injection; there is no package-level
// global logger anywhere in the module.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

type logger struct {
	log *logrus.Entry
}

// New creates a logger writing colorized text to stdout at the given level.
func New(level string) Logger {
	return NewWithWriter(level, os.Stdout, "text")
}

// NewJSON creates a logger emitting structured JSON lines.
func NewJSON(level string) Logger {
	return NewWithWriter(level, os.Stdout, "json")
}

// NewWithWriter creates a logger with an explicit writer and format ("text" or "json").
func NewWithWriter(level string, w io.Writer, format string) Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(parseLevel(level))

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return &logger{log: logrus.NewEntry(log)}
}

// NewFromConfig mirrors the config-driven constructor the teacher exposes:
// pick JSON or text based on the configured format string.
func NewFromConfig(level, format string) Logger {
	if format == "json" {
		return NewJSON(level)
	}
	return New(level)
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *logger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *logger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *logger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *logger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *logger) Fatal(args ...interface{}) { l.log.Fatal(args...) }

func (l *logger) Debugf(format string, args ...interface{}) { l.log.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.log.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.log.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.log.Errorf(format, args...) }
func (l *logger) Fatalf(format string, args ...interface{}) { l.log.Fatalf(format, args...) }

func (l *logger) WithField(key string, value interface{}) Logger {
	return &logger{log: l.log.WithField(key, value)}
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	return &logger{log: l.log.WithFields(fields)}
}

func (l *logger) WithError(err error) Logger {
	return &logger{log: l.log.WithField("error", err.Error())}
}

// noopLogger discards everything; used by tests that don't care about logs.
type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                       {}
func (noopLogger) Info(args ...interface{})                        {}
func (noopLogger) Warn(args ...interface{})                        {}
func (noopLogger) Error(args ...interface{})                       {}
func (noopLogger) Fatal(args ...interface{})                       {}
func (noopLogger) Debugf(format string, args ...interface{})       {}
func (noopLogger) Infof(format string, args ...interface{})        {}
func (noopLogger) Warnf(format string, args ...interface{})        {}
func (noopLogger) Errorf(format string, args ...interface{})       {}
func (noopLogger) Fatalf(format string, args ...interface{})       {}
func (n noopLogger) WithField(key string, value interface{}) Logger { return n }
func (n noopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n noopLogger) WithError(err error) Logger                      { return n }

// NewNoop returns a logger that discards all output, for use in tests.
func NewNoop() Logger { return noopLogger{} }
