package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ImportProgress shows catalog import progress for one file as a single
// rewritten line per record kind, e.g. "products.yaml: products 3/12".
// Skipped records are listed when the import finishes.
type ImportProgress struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	kind    string
	total   int
	done    int
	drawn   bool
	skipped []string
}

// NewImportProgress returns a progress display that prefixes every line with
// label. A nil writer means os.Stderr.
func NewImportProgress(w io.Writer, label string) *ImportProgress {
	if w == nil {
		w = os.Stderr
	}
	return &ImportProgress{w: w, label: label}
}

// Begin starts a new kind of record, closing the line of the previous one.
func (p *ImportProgress) Begin(kind string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endLine()
	p.kind, p.total, p.done = kind, total, 0
	if total > 0 {
		p.draw()
	}
}

// Imported counts one written record.
func (p *ImportProgress) Imported(kind, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.draw()
}

// Skipped counts one record that was not written and remembers why.
func (p *ImportProgress) Skipped(kind, id, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.skipped = append(p.skipped, fmt.Sprintf("%s %s (%s)", kind, id, reason))
	p.draw()
}

// Finish ends the progress line and lists skipped records.
func (p *ImportProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endLine()
	for _, s := range p.skipped {
		fmt.Fprintf(p.w, "%s: skipped %s\n", p.label, s)
	}
}

func (p *ImportProgress) draw() {
	kind := p.kind
	if p.total != 1 {
		kind += "s"
	}
	fmt.Fprintf(p.w, "\r%s: %s %d/%d", p.label, kind, min(p.done, p.total), p.total)
	p.drawn = true
}

func (p *ImportProgress) endLine() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}
