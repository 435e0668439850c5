package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Reporter prints one human-readable line per generation outcome. It is safe
// for concurrent use; a Reporter with a nil writer discards everything.
type Reporter struct {
	w     io.Writer
	quiet bool
	mu    sync.Mutex

	ok   *color.Color
	warn *color.Color
	dim  *color.Color
}

// NewReporter writes to w. Quiet suppresses success and skip lines; listed
// paths are always written. Colors are used only when w is a terminal.
func NewReporter(w io.Writer, quiet bool) *Reporter {
	r := &Reporter{
		w:     w,
		quiet: quiet,
		ok:    color.New(color.FgGreen, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		dim:   color.New(color.Faint),
	}
	if !isTerminal(w) {
		r.ok.DisableColor()
		r.warn.DisableColor()
		r.dim.DisableColor()
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *Reporter) line(c *color.Color, format string, args ...any) {
	if r == nil || r.w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = c.Fprintf(r.w, format+"\n", args...)
}

// Generated reports a file written from template.
func (r *Reporter) Generated(template, output string) {
	if r != nil && !r.quiet {
		r.line(r.ok, "[INFO]: generate %s to %s success.", template, output)
	}
}

// Unchanged reports a rendered file identical to what is already on disk.
func (r *Reporter) Unchanged(template, output string) {
	if r != nil && !r.quiet {
		r.line(r.dim, "[INFO]: %s is up to date with %s.", output, template)
	}
}

// Skipped reports an existing file kept because overwriting is disabled.
func (r *Reporter) Skipped(template, output string) {
	if r != nil && !r.quiet {
		r.line(r.warn, "[INFO]: file %s already exists, skipping template %s.", output, template)
	}
}

// Listed prints a bare output path for dry runs.
func (r *Reporter) Listed(output string) {
	if r == nil || r.w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.w, output)
}
