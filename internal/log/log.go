// Package log provides context-aware diagnostic logging for cmdcache.
//
// Diagnostics always go to stderr so the replayed command output on stdout
// stays byte-exact.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/cmdcache/internal/ui/styles"
)

type ctxKey struct{}

// Logger provides diagnostic output and verbose tracing.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
	styled  bool
}

// New creates a new logger. Quiet wins over verbose.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{
		out:     out,
		verbose: verbose,
		quiet:   quiet,
		styled:  isTerminal(out),
	}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{out: io.Discard}
}

// Printf writes formatted output unless quiet.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Command logs an external command execution and returns a function that
// records how long it took. Only prints in verbose mode.
func (l *Logger) Command(name string, args ...string) func(time.Duration) {
	if !l.IsVerbose() {
		return func(time.Duration) {}
	}

	line := "$ " + name
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}

	return func(elapsed time.Duration) {
		fmt.Fprintf(l.out, "%s %s\n", l.marker(line), l.muted("("+elapsed.Round(time.Millisecond).String()+")"))
	}
}

// Debug prints a message followed by key=value pairs in verbose mode.
// A trailing key without a value is dropped.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if !l.IsVerbose() {
		return
	}

	var b strings.Builder
	b.WriteString(l.marker("=="))
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	b.WriteByte('\n')
	io.WriteString(l.out, b.String())
}

// IsVerbose returns true if verbose output is enabled and not silenced.
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

func (l *Logger) marker(s string) string {
	if !l.styled {
		return s
	}
	return styles.PrimaryStyle.Render(s)
}

func (l *Logger) muted(s string) string {
	if !l.styled {
		return s
	}
	return styles.MutedStyle.Render(s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
