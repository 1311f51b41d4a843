package gochan

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used by channels and runners. It is small
// enough to be satisfied by a logrus entry wrapper or a test double.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)

	// WithField returns a logger that attaches key=value to every entry.
	WithField(key string, value any) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger adapts a logrus logger. A nil logger gets a fresh
// logrus.New() at warn level.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
		l.SetLevel(logrus.WarnLevel)
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debugf(format string, v ...any) { l.entry.Debugf(format, v...) }
func (l *logrusLogger) Infof(format string, v ...any)  { l.entry.Infof(format, v...) }
func (l *logrusLogger) Warnf(format string, v ...any)  { l.entry.Warnf(format, v...) }

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return NewLogrusLogger(l)
}

var defaultLogger = NewLogrusLogger(nil)
