package dieselrt

import (
	"fmt"
	"os"
	"sync/atomic"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// maxLogMessage bounds a formatted message, longer ones are cut.
const maxLogMessage = 1024

// exitFunc terminates the process on fatal errors.
var exitFunc = os.Exit

// logger routes messages to the configured LogFunc or to stdout, and counts
// errors so that callers of the asynchronous pipeline can detect failures.
type logger struct {
	fn     LogFunc
	out    *logrus.Logger
	errors atomic.Int64
}

func newLogger(fn LogFunc) *logger {
	out := logrus.New()
	out.SetOutput(os.Stdout)
	out.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	out.ExitFunc = func(code int) { exitFunc(code) }
	return &logger{fn: fn, out: out}
}

func (l *logger) logf(isError bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	msg = truncate(msg, maxLogMessage)
	if isError {
		l.errors.Add(1)
	}
	if l.fn != nil {
		l.fn(isError, msg)
		return
	}
	if isError {
		l.out.Error(msg)
	} else {
		l.out.Info(msg)
	}
}

// forward is a LogFunc that feeds l, so that messages from the platform
// are truncated, routed and counted like the context's own.
func (l *logger) forward(isError bool, msg string) {
	l.logf(isError, "%s", msg)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (l *logger) infof(format string, args ...any)  { l.logf(false, format, args...) }
func (l *logger) errorf(format string, args ...any) { l.logf(true, format, args...) }

// fatal logs err and terminates the process.
func (l *logger) fatal(err error) {
	l.logf(true, "fatal: %v", err)
	l.out.Exit(1)
}
