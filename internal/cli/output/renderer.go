package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles styles
}

type styles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	key     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	lr := lipgloss.NewRenderer(w)
	return styles{
		header:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		failure: lr.NewStyle().Foreground(lipgloss.Color("9")),
		key:     lr.NewStyle().Bold(true),
	}
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal flag.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() OutputMode {
	switch r.mode {
	case ModeText, ModeMarkdown, ModeJSON:
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to standard output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a section header styled for the terminal.
func (r *Renderer) Header(level int, text string) {
	if level <= 1 {
		r.Println(r.styles.header.Render(text))
		return
	}
	r.Println(r.styles.key.Render(text))
}

// Muted writes de-emphasized text.
func (r *Renderer) Muted(text string) {
	r.Println(r.styles.muted.Render(text))
}

// Success writes a success message.
func (r *Renderer) Success(text string) {
	r.Println(r.styles.success.Render("✓ " + text))
}

// Warning writes a warning to standard output. Recoverable conditions such
// as an empty selection are reported this way rather than as errors.
func (r *Renderer) Warning(text string) {
	r.Println(r.styles.warning.Render("! " + text))
}

// Error writes an error message to the error output.
func (r *Renderer) Error(text string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.failure.Render("✗ "+text))
}

// KeyValue writes "key: value" with the key emphasized.
func (r *Renderer) KeyValue(key, value string) {
	r.Println(r.styles.key.Render(key+":") + " " + value)
}

// StatusLine writes an item with a status marker and optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	var marker string
	switch status {
	case "success":
		marker = r.styles.success.Render("✓")
	case "failed":
		marker = r.styles.failure.Render("✗")
	default:
		marker = r.styles.muted.Render("•")
	}
	line := marker + " " + name
	if detail != "" {
		line += " " + r.styles.muted.Render(detail)
	}
	r.Println(line)
}

// Table writes rows under header. Text mode draws a box table; markdown
// mode writes a pipe table.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	head := make(table.Row, len(header))
	for i, h := range header {
		head[i] = h
	}
	t.AppendHeader(head)
	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, c := range row {
			cells[i] = c
		}
		t.AppendRow(cells)
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(t.RenderMarkdown())
		return
	}
	r.Println(t.Render())
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
