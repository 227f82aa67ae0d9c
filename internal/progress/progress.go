// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Reporter prints the banner, per-function progress and the final result.
// Progress lines are rewritten in place on terminals and suppressed
// otherwise.
type Reporter struct {
	w           io.Writer
	interactive bool

	mu      sync.Mutex
	current int
	dirty   bool

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

// New returns a reporter writing to w. noColor forces plain output.
func New(w io.Writer, interactive, noColor bool) *Reporter {
	r := &Reporter{
		w:           w,
		interactive: interactive,
		ok:          color.New(color.FgGreen, color.Bold),
		warn:        color.New(color.FgYellow),
		fail:        color.New(color.FgRed, color.Bold),
		dim:         color.New(color.Faint),
	}
	if noColor || !interactive {
		for _, c := range []*color.Color{r.ok, r.warn, r.fail, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

func (r *Reporter) Banner(version string) {
	fmt.Fprintf(r.w, "✨ hbclabel %s ✨\n", version)
}

// Function reports that block done of total has been processed.
func (r *Reporter) Function(done, total int, ident string, labels int) {
	if !r.interactive {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	frame := frames[r.current]
	r.current = (r.current + 1) % len(frames)
	fmt.Fprintf(r.w, "\r\033[K%s %d/%d %s", frame, done, total, r.dim.Sprintf("%s (%d labels)", ident, labels))
	r.dirty = true
}

func (r *Reporter) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty {
		fmt.Fprint(r.w, "\r\033[K")
		r.dirty = false
	}
}

func (r *Reporter) Done(message string) {
	r.clear()
	fmt.Fprintf(r.w, "%s %s\n", r.ok.Sprint("✓"), message)
}

func (r *Reporter) Warn(message string) {
	r.clear()
	fmt.Fprintf(r.w, "%s %s\n", r.warn.Sprint("!"), message)
}

func (r *Reporter) Fail(message string) {
	r.clear()
	fmt.Fprintf(r.w, "%s %s\n", r.fail.Sprint("✗"), message)
}
