// Package logger implements the ports.Logger abstraction on top of logrus.
package logger

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Logrus routes structured application logs through a dedicated logrus
// instance. The pipeline core only sees the ports.Logger interface.
type Logrus struct {
	entry *log.Logger
}

// New creates a logger writing to stderr. Verbose enables debug level;
// otherwise only warnings and errors surface so CLI output stays clean.
func New(verbose bool) *Logrus {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&log.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return &Logrus{entry: l}
}

// NewSilent creates a logger that discards everything. Used in tests.
func NewSilent() *Logrus {
	l := log.New()
	l.SetOutput(io.Discard)
	return &Logrus{entry: l}
}

func (l *Logrus) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(log.Fields(fields)).Debug(msg)
}

func (l *Logrus) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(log.Fields(fields)).Info(msg)
}

func (l *Logrus) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(log.Fields(fields)).Warn(msg)
}

func (l *Logrus) Error(msg string, err error, fields map[string]interface{}) {
	entry := l.entry.WithFields(log.Fields(fields))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}
