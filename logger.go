package setto

import (
	log "github.com/sirupsen/logrus"
)

const logCategory = "setto_client"

// Logger receives the client's diagnostic messages. The category names the
// component that logged, for filtering.
type Logger interface {
	Debug(message string, category string)
	Info(message string, category string)
	Warn(message string, category string)
	Error(message string, category string)
}

type logrusLogger struct {
	logger *log.Logger
}

// NewLogrusLogger adapts a logrus logger. The category is attached as a field.
// A nil logger means the logrus standard logger.
func NewLogrusLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.StandardLogger()
	}
	return &logrusLogger{logger: l}
}

// discardLogger is the default until a caller opts in with WithLogger
type discardLogger struct{}

func (discardLogger) Debug(message string, category string) {}
func (discardLogger) Info(message string, category string)  {}
func (discardLogger) Warn(message string, category string)  {}
func (discardLogger) Error(message string, category string) {}

// NopLogger returns a Logger that drops every message.
func NopLogger() Logger {
	return discardLogger{}
}

func defaultLogger() Logger {
	return NopLogger()
}

func (l *logrusLogger) entry(category string) *log.Entry {
	return l.logger.WithField("category", category)
}

func (l *logrusLogger) Debug(message string, category string) {
	l.entry(category).Debug(message)
}

func (l *logrusLogger) Info(message string, category string) {
	l.entry(category).Info(message)
}

func (l *logrusLogger) Warn(message string, category string) {
	l.entry(category).Warn(message)
}

func (l *logrusLogger) Error(message string, category string) {
	l.entry(category).Error(message)
}
