// Package ui writes command output in terminal, plain text, JSON or YAML
// form. A Printer is safe for concurrent use so that books processed in
// parallel do not interleave partial lines.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/style"
	"gopkg.in/yaml.v3"
)

// Printer writes rendered lines to an output. In JSON and YAML mode the
// output carries only the Data document and lines go to the diagnostics
// writer instead, stderr unless set with SetDiagnostics.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	diag     io.Writer
	format   Format
	renderer style.Renderer
}

// NewPrinter creates a printer. FormatAuto is resolved against out when it
// is a file and falls back to plain text otherwise.
func NewPrinter(out io.Writer, format Format) *Printer {
	if format == FormatAuto {
		format = FormatText
		if f, ok := out.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	var renderer style.Renderer = style.NewPlainRenderer()
	if format == FormatTerminal {
		renderer = style.NewTerminalRenderer()
	}
	p := &Printer{out: out, diag: out, format: format, renderer: renderer}
	if p.Structured() {
		p.diag = os.Stderr
	}
	return p
}

// SetDiagnostics redirects line output of a structured printer.
func (p *Printer) SetDiagnostics(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Structured() {
		p.diag = w
	}
}

// Format returns the resolved output format.
func (p *Printer) Format() Format {
	return p.format
}

// Structured reports whether output is meant for machines.
func (p *Printer) Structured() bool {
	return p.format == FormatJSON || p.format == FormatYAML
}

// Banner announces work on repo.
func (p *Printer) Banner(repo string) { p.Println(p.renderer.RenderBanner(repo)) }

// BookError reports the failure that ended work on repo.
func (p *Printer) BookError(repo string, err error) {
	p.Println(p.renderer.RenderBookError(repo, err))
}

// Hint prints an indented suggestion under a failure.
func (p *Printer) Hint(msg string) { p.Println(p.renderer.RenderHint(msg)) }

// Plan lists the branches or tags a push run would delete.
func (p *Printer) Plan(kind string, items []string) {
	p.Println(p.renderer.RenderPlan(kind, items))
}

// Success prints a markup message as a success line.
func (p *Printer) Success(msg string) { p.Println(p.renderer.RenderSuccess(msg)) }

// Warning prints a markup message as a warning line.
func (p *Printer) Warning(msg string) { p.Println(p.renderer.RenderWarning(msg)) }

// Error prints err as an error line.
func (p *Printer) Error(err error) { p.Println(p.renderer.RenderError(err)) }

// Summary reports how many of total books failed.
func (p *Printer) Summary(total, failed int) {
	p.Println(p.renderer.RenderSummary(total, failed))
}

// Println writes one line, to the diagnostics writer when structured.
func (p *Printer) Println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.diag, line)
}

// Data writes v as YAML in YAML mode and as indented JSON otherwise.
func (p *Printer) Data(v interface{}) error {
	var (
		out []byte
		err error
	)
	if p.format == FormatYAML {
		out, err = yaml.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode output")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.out.Write(out)
	return err
}

// Markdown writes md, rendered with glamour on a terminal.
func (p *Printer) Markdown(md string) error {
	text := md
	if p.format == FormatTerminal {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			if rendered, err := renderer.Render(md); err == nil {
				text = rendered
			}
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.out, text)
	return err
}
