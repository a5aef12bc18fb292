package logging

import (
	"fmt"
	"log"
	"os"
	"reflect"
)

// Logger defines a minimal, printf-style logging contract.
//
// Components depend on this interface rather than a concrete logger so that
// tests can inject a no-op and hosts can route output wherever they like.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// componentLogger writes leveled, component-prefixed lines via the standard
// log package.
type componentLogger struct {
	component string
	std       *log.Logger
	debug     bool
}

// NewComponentLogger returns the default application logger scoped to a
// component. Debug output is enabled by the PAWPAL_DEBUG environment
// variable.
func NewComponentLogger(component string) Logger {
	return &componentLogger{
		component: component,
		std:       log.New(os.Stderr, "", log.LstdFlags|log.Lmsgprefix),
		debug:     os.Getenv("PAWPAL_DEBUG") != "",
	}
}

func (l *componentLogger) emit(level, format string, args ...any) {
	l.std.Printf("[%s] [%s] %s", level, l.component, fmt.Sprintf(format, args...))
}

func (l *componentLogger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.emit("DEBUG", format, args...)
}

func (l *componentLogger) Info(format string, args ...any)  { l.emit("INFO", format, args...) }
func (l *componentLogger) Warn(format string, args ...any)  { l.emit("WARN", format, args...) }
func (l *componentLogger) Error(format string, args ...any) { l.emit("ERROR", format, args...) }
