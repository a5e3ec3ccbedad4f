// Package telemetry wires internal/concatdoc's EventLogger to logrus,
// tagging every mutation with a correlation id the way
// DataDog-dd-trace-go's logrus hook tags every log line with a trace id
// (contrib/sirupsen/logrus/example_test.go).
package telemetry

import (
	"io"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/funvibe/notebook-concat/internal/concatdoc"
)

// Logger implements concatdoc.EventLogger on top of a *logrus.Logger. Every
// call gets a fresh correlation id, so each log line carries its own id: an
// Edit that logs EditFallback for skipped content changes and then
// MutationAccepted writes those lines under different ids.
type Logger struct {
	log *logrus.Logger
}

var _ concatdoc.EventLogger = (*Logger)(nil)

// New builds a Logger writing to out. It picks a formatter the way a
// server's own stdout logging would: JSON when the output is not an
// interactive terminal (e.g. piped to a log collector), text otherwise.
func New(out io.Writer, fd uintptr) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	if isatty.IsTerminal(fd) {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Logger{log: l}
}

func (l *Logger) entry() *logrus.Entry {
	return l.log.WithField("correlation_id", uuid.NewString())
}

func (l *Logger) MutationAccepted(event, cellURI string, version int) {
	l.entry().WithFields(logrus.Fields{
		"event":   event,
		"cell":    cellURI,
		"version": version,
	}).Info("mutation accepted")
}

func (l *Logger) MutationRejected(event, cellURI, reason string) {
	l.entry().WithFields(logrus.Fields{
		"event":  event,
		"cell":   cellURI,
		"reason": reason,
	}).Warn("mutation rejected")
}

func (l *Logger) EditFallback(cellURI string, err error) {
	l.entry().WithFields(logrus.Fields{
		"cell":  cellURI,
		"error": err.Error(),
	}).Info("content change skipped after internal failure")
}
