package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while a batch of PDFs is processed.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a LogReporter writing to stderr if the CI environment variable is set.
func NewReporter(label string) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return NewLogReporter(os.Stderr, label)
	}
	return &TerminalReporter{label: label}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	label string
	bar   *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(r.label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LogReporter prints line-by-line progress suitable for CI logs.
type LogReporter struct {
	w     io.Writer
	label string
	total int
	done  int
}

func NewLogReporter(w io.Writer, label string) *LogReporter {
	return &LogReporter{w: w, label: label}
}

func (r *LogReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "%s %d files\n", r.label, total)
}

func (r *LogReporter) Update(current int, message string) {
	r.done = current
	fmt.Fprintf(r.w, "[%d/%d] %s\n", current, r.total, message)
}

func (r *LogReporter) Finish() {
	fmt.Fprintf(r.w, "%s complete: %d/%d\n", r.label, r.done, r.total)
}
