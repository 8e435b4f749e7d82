// Package logger provides the structured logger used throughout the client.
package logger

import (
	"io"
	"path"
	"runtime"
	"strconv"

	rlog "github.com/sirupsen/logrus"
)

// Logger is the logging surface every collaborator depends on.
type Logger interface {
	rlog.FieldLogger
	SetOutput(w io.Writer)
	SetLevel(level string) error
}

type defaultLogger struct {
	*rlog.Logger
}

func (l *defaultLogger) SetLevel(level string) error {
	lv, err := rlog.ParseLevel(level)
	if err != nil {
		return err
	}
	l.Logger.SetLevel(lv)
	return nil
}

func callerPrettyfier(frame *runtime.Frame) (function string, file string) {
	return path.Base(frame.Function), path.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}

// New returns a Logger configured with the caller-aware text formatter the
// rest of the package expects, defaulting to info level.
func New() Logger {
	l := rlog.New()
	l.SetFormatter(&rlog.TextFormatter{CallerPrettyfier: callerPrettyfier})
	l.SetReportCaller(true)
	l.SetLevel(rlog.InfoLevel)
	return &defaultLogger{l}
}
