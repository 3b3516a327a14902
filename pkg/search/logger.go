package search

import (
	"log"
	"os"
)

// Logger is the injected informational logger described by the engine's
// external interface: it only ever carries informational messages, never
// drives control flow.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger wraps the standard log.Logger, mirroring
// abworrall-eclipse-hdr/pkg/estack/imagestack.go's use of log.Printf (the
// teacher itself logs with fmt.Printf, not stdlib log).
type StdLogger struct {
	l *log.Logger
}

func NewStdLogger() *StdLogger {
	return &StdLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *StdLogger) Printf(format string, args ...any) { s.l.Printf(format, args...) }

// nopLogger discards every message; used as the zero-value default so
// callers never need a nil check.
type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
