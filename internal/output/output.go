// Package output provides context-aware output for cmdcache's own reports.
// Stdout is used for primary data output (the --list table).
// Stderr (via log package) is used for diagnostics.
//
// Replayed command output never goes through a Printer; it is copied to the
// process streams byte for byte by package replay.
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
)

type ctxKey struct{}

// Printer writes primary output to stdout.
type Printer struct {
	w io.Writer
}

// New creates a new Printer writing to the given writer unchanged.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewStyled creates a Printer that downgrades ANSI colors to what w
// supports. Styling is stripped entirely when w is not a terminal or
// NO_COLOR is set.
func NewStyled(w io.Writer) *Printer {
	return New(colorprofile.NewWriter(w, os.Environ()))
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext retrieves the Printer from context.
// Returns a styled Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return NewStyled(os.Stdout)
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}
