// Package console prints run progress and the final summary for people.
// Logs go to stderr through pkg/logger; this package writes to stdout.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	barWidth = 40
	// Non-terminal output reports progress at these fractions.
	plainStep = 0.25
)

// Stat is one labelled line of the summary block.
type Stat struct {
	Label string
	Value string
}

// Printer renders progress and summaries. It is not safe for concurrent use.
type Printer struct {
	out   io.Writer
	tty   bool
	quiet bool

	bar      progress.Model
	label    string
	total    int
	reported float64

	titleStyle lipgloss.Style
	labelStyle lipgloss.Style
	warnStyle  lipgloss.Style
	fileStyle  lipgloss.Style
}

// Option configures a Printer.
type Option func(*Printer)

// WithTerminal overrides terminal detection.
func WithTerminal(tty bool) Option {
	return func(p *Printer) { p.tty = tty }
}

// WithQuiet suppresses progress lines. Summaries are still printed.
func WithQuiet(quiet bool) Option {
	return func(p *Printer) { p.quiet = quiet }
}

// New creates a Printer writing to out. Styling and in-place redraws are used
// only when out is a terminal.
func New(out io.Writer, opts ...Option) *Printer {
	p := &Printer{out: out, tty: IsTerminal(out)}
	for _, opt := range opts {
		opt(p)
	}

	r := lipgloss.NewRenderer(out)
	p.titleStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	p.labelStyle = r.NewStyle().Foreground(lipgloss.Color("241"))
	p.warnStyle = r.NewStyle().Foreground(lipgloss.Color("214"))
	p.fileStyle = r.NewStyle().Foreground(lipgloss.Color("42"))

	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins a progress line for total items.
func (p *Printer) Start(label string, total int) {
	p.label = label
	p.total = total
	p.reported = 0
}

// Advance reports done of the started total.
func (p *Printer) Advance(done int) {
	if p.quiet || p.total <= 0 {
		return
	}
	pct := float64(done) / float64(p.total)
	if pct > 1 {
		pct = 1
	}

	if p.tty {
		fmt.Fprintf(p.out, "\r%s %s %d/%d", p.label, p.bar.ViewAs(pct), done, p.total)
		return
	}
	// Plain output: one line per crossed step.
	for p.reported+plainStep <= pct+1e-9 {
		p.reported += plainStep
		fmt.Fprintf(p.out, "%s: %d%% (%d/%d)\n", p.label, int(p.reported*100+0.5), done, p.total)
	}
}

// Finish ends the progress line.
func (p *Printer) Finish() {
	if p.quiet || p.total <= 0 {
		return
	}
	if p.tty {
		fmt.Fprintln(p.out)
	}
	p.total = 0
}

// Summary prints a titled block of stats, the files written and the warnings.
func (p *Printer) Summary(title string, stats []Stat, files, warnings []string) {
	var b strings.Builder
	b.WriteString(p.titleStyle.Render(title))
	b.WriteString("\n")

	width := 0
	for _, s := range stats {
		if len(s.Label) > width {
			width = len(s.Label)
		}
	}
	for _, s := range stats {
		label := s.Label + ":" + strings.Repeat(" ", width-len(s.Label))
		b.WriteString("  " + p.labelStyle.Render(label) + " " + s.Value + "\n")
	}

	if len(files) > 0 {
		b.WriteString(p.titleStyle.Render("Files") + "\n")
		for _, f := range files {
			b.WriteString("  " + p.fileStyle.Render(f) + "\n")
		}
	}
	if len(warnings) > 0 {
		b.WriteString(p.titleStyle.Render(fmt.Sprintf("Warnings (%d)", len(warnings))) + "\n")
		for _, w := range warnings {
			b.WriteString("  " + p.warnStyle.Render(w) + "\n")
		}
	}
	fmt.Fprint(p.out, b.String())
}

// Errorf prints a single error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.warnStyle.Render("error: "+fmt.Sprintf(format, args...)))
}
