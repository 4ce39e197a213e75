// Package progress reports corpus ingestion progress.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives ingestion progress for one corpus at a time.
type Reporter interface {
	Start(corpus string, total int)
	Update(done int)
	Finish()
}

// NewReporter returns a TerminalReporter for interactive use, or a
// CIReporter when CI or GITHUB_ACTIONS is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter draws a chunk-count progress bar on stderr.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(corpus string, total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Embedding "+corpus),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(done int) {
	if r.bar != nil {
		_ = r.bar.Set(done)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// CIReporter prints one line per update, suitable for CI logs.
type CIReporter struct {
	Out    io.Writer
	corpus string
	total  int
}

func (r *CIReporter) Start(corpus string, total int) {
	r.corpus = corpus
	r.total = total
	fmt.Fprintf(r.Out, "Ingesting %s: %d chunks\n", corpus, total)
}

func (r *CIReporter) Update(done int) {
	fmt.Fprintf(r.Out, "[%s %d/%d]\n", r.corpus, done, r.total)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(r.Out, "Ingested %s\n", r.corpus)
}
