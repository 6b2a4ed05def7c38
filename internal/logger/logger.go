package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the narrow logging interface the pipeline stages depend on.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

type logrusLogger struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// New creates a logrus-backed logger writing to stderr at the given level.
// Unknown levels fall back to info.
func New(level string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if parsed, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(parsed)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &logrusLogger{logger: l, entry: logrus.NewEntry(l)}
}

// NewWithOutput is like New but writes to the given writer. Used by tests.
func NewWithOutput(level string, out io.Writer) Logger {
	l := New(level).(*logrusLogger)
	l.logger.SetOutput(out)
	return l
}

func (l *logrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *logrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *logrusLogger) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *logrusLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{logger: l.logger, entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{logger: l.logger, entry: l.entry.WithFields(fields)}
}

// Discard returns a logger that drops everything. Handy default for
// constructors whose callers don't care about logging.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logrusLogger{logger: l, entry: logrus.NewEntry(l)}
}
