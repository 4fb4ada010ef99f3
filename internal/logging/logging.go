// Package logging provides the node-wide structured logger.
//
// It generalizes the teacher's pkg/logger (three *log.Logger instances with
// Silent/ToFile switches) onto logrus, so components can attach fields like
// peer_id or transfer_id instead of formatting them into the message string.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var root = newRoot()

func newRoot() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.DebugLevel)
	return l
}

// For returns a logger scoped to a component, e.g. logging.For("discovery").
func For(component string) *logrus.Entry {
	return root.WithField("component", component)
}

// SetOutput redirects all logging to w.
func SetOutput(w io.Writer) {
	root.SetOutput(w)
}

// Silent disables all logging output.
func Silent() {
	root.SetOutput(io.Discard)
}

// ToFile redirects logging to the named file, creating/appending it.
func ToFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	SetOutput(f)
	return nil
}

// SetLevelDebug enables debug-level logging (the default).
func SetLevelDebug() {
	root.SetLevel(logrus.DebugLevel)
}

// SetLevelInfo quiets per-message debug logging down to informational
// events only.
func SetLevelInfo() {
	root.SetLevel(logrus.InfoLevel)
}
