// Package logging provides the leveled logger used throughout the service.
// It wraps the standard library's log.Logger rather than adopting a
// structured logging library — see DESIGN.md for why.
package logging

import (
	"log"
	"os"
)

// Logger is a thin leveled wrapper around *log.Logger. Call sites read the
// same way the teacher's injected *log.Logger does (logger.Printf-style),
// just with a level prefix baked in.
type Logger struct {
	base *log.Logger
}

// New returns a Logger writing to os.Stdout with standard flags.
func New() *Logger {
	return &Logger{base: log.New(os.Stdout, "", log.LstdFlags)}
}

func (l *Logger) Info(format string, args ...any) {
	l.base.Printf("INFO "+format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.base.Printf("WARN "+format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.base.Printf("ERROR "+format, args...)
}
