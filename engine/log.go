package engine

import (
	"fmt"

	"github.com/charmbracelet/log"
)

func sprintf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// Logger is the subset of charmbracelet/log that the engine uses for
// diagnostics. A nil Logger on Parameters means "silent", mirroring
// direwolf's text_color_set/dw_printf diagnostic calls (src/log.go,
// src/textcolor.go) but through a real leveled logger instead of ANSI
// color codes and stderr writes.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewLogger wraps a charmbracelet/log.Logger so it satisfies Logger.
func NewLogger(l *log.Logger) Logger {
	return charmLogger{l}
}

type charmLogger struct{ l *log.Logger }

func (c charmLogger) Debugf(format string, args ...interface{}) { c.l.Debug(sprintf(format, args...)) }
func (c charmLogger) Infof(format string, args ...interface{})  { c.l.Info(sprintf(format, args...)) }
func (c charmLogger) Errorf(format string, args ...interface{}) { c.l.Error(sprintf(format, args...)) }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
