package webrays

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gekko3d/webrays/scene"
)

// Logger is the module-wide logging capability, adapted from the
// framework this module grew out of: independent stdout/stderr
// destinations and a runtime debug gate.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger is the standard Logger: INFO/DEBUG to stdout, WARN/ERROR
// to stderr, debug output gated at runtime.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.mu.Lock()
	dbg := l.debug
	l.mu.Unlock()
	if !dbg {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// sceneLoggerAdapter lets a Logger satisfy package scene's minimal Logger
// interface without scene importing this package (which would cycle back
// through scene's own dependents).
type sceneLoggerAdapter struct{ l Logger }

func (a sceneLoggerAdapter) Debugf(format string, args ...any) { a.l.Debugf(format, args...) }
func (a sceneLoggerAdapter) Infof(format string, args ...any)  { a.l.Infof(format, args...) }
func (a sceneLoggerAdapter) Warnf(format string, args ...any)  { a.l.Warnf(format, args...) }
func (a sceneLoggerAdapter) Errorf(format string, args ...any) { a.l.Errorf(format, args...) }

var _ scene.Logger = sceneLoggerAdapter{}
