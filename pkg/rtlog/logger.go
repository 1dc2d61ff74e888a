// Package rtlog provides the single-method logging contract used
// throughout the renderer, matching the teacher codebase's minimal
// Printf-shaped Logger rather than a structured-logging library (none
// appears anywhere in the retrieved example corpus).
package rtlog

import (
	"fmt"
	"log"
	"os"
)

// Logger is implemented by anything that can accept a printf-style log
// line; the renderer packages depend only on this, never on *log.Logger
// directly, so hosts can redirect logging anywhere they like.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger wraps the standard library's log package, prefixing every
// line with a component tag.
type StdLogger struct {
	inner *log.Logger
}

func NewStdLogger(component string) *StdLogger {
	prefix := fmt.Sprintf("[%s] ", component)
	return &StdLogger{inner: log.New(os.Stderr, prefix, log.LstdFlags)}
}

func (l *StdLogger) Printf(format string, args ...any) { l.inner.Printf(format, args...) }

// Discard silently drops every log line, for tests and library embedding
// that want no renderer output.
type Discard struct{}

func (Discard) Printf(string, ...any) {}
