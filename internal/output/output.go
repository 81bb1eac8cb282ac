package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Printer writes command results either as JSON or for a person reading a
// terminal. Errors and warnings go to a separate writer in human mode.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	json   bool
	isTTY  bool
	styles styles
}

type styles struct {
	err     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	key     lipgloss.Style
	title   lipgloss.Style
	frame   lipgloss.Style
}

// Alignment is a table column alignment.
type Alignment int

// Column alignments.
const (
	AlignLeft Alignment = iota
	AlignRight
)

func newStyles(styled bool) styles {
	if !styled {
		plain := lipgloss.NewStyle()
		return styles{err: plain, success: plain, warning: plain, key: plain, title: plain, frame: plain}
	}
	return styles{
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		key:     lipgloss.NewStyle().Bold(true),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
	}
}

// NewPrinter creates a Printer writing to w. jsonMode selects JSON output;
// isTTY turns on colors, borders and framed tables for human output.
func NewPrinter(w io.Writer, jsonMode bool, isTTY bool) *Printer {
	return &Printer{
		w:      w,
		errW:   w,
		json:   jsonMode,
		isTTY:  isTTY,
		styles: newStyles(isTTY),
	}
}

// WithStderr routes human-mode errors and warnings to w. JSON errors stay
// on the main writer so scripts read a single stream.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errW = w
	return p
}

// IsJSON reports JSON mode.
func (p *Printer) IsJSON() bool {
	return p.json
}

// IsTTY reports whether human output is styled.
func (p *Printer) IsTTY() bool {
	return p.isTTY
}

// Success prints a result. Human mode prints data["message"] when it is a
// string, otherwise one "key: value" line per key in sorted order.
func (p *Printer) Success(data map[string]any) error {
	if p.json {
		return p.WriteJSON(data)
	}

	if msg, ok := data["message"].(string); ok {
		mustWrite(fmt.Fprintln(p.w, p.styles.success.Render(msg)))
		return nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		mustWrite(fmt.Fprintf(p.w, "%s: %v\n", p.styles.key.Render(key), data[key]))
	}
	return nil
}

// Error prints err. Errors without an exit code are reported as user
// errors. JSON mode writes {"error": "...", "code": N}.
func (p *Printer) Error(err error) {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitUserError, Message: err.Error()}
	}

	if p.json {
		mustWrite(p.w.Write(ErrorJSON(exitErr.Message, exitErr.Code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.err.Render("Error"), exitErr.Message))
}

// Warn prints a warning. JSON mode writes {"warning": "..."}.
func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		_ = p.WriteJSON(map[string]any{"warning": msg})
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.warning.Render("Warning"), msg))
}

// Stderr writes a progress or status note to the error writer. It prints
// nothing in JSON mode.
func (p *Printer) Stderr(format string, args ...any) {
	if p.json {
		return
	}
	mustWrite(fmt.Fprintf(p.errW, format, args...))
}

// Print writes formatted text without a trailing newline.
func (p *Printer) Print(format string, args ...any) {
	mustWrite(fmt.Fprintf(p.w, format, args...))
}

// Println writes args followed by a newline.
func (p *Printer) Println(args ...any) {
	mustWrite(fmt.Fprintln(p.w, args...))
}

// WriteJSON writes data as indented JSON.
func (p *Printer) WriteJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorJSON returns {"error": message, "code": code} as bytes.
func ErrorJSON(message string, code int) []byte {
	result, _ := json.Marshal(map[string]any{
		"error": message,
		"code":  code,
	})
	return result
}

// Snippet prints rendered note text. On a terminal it is framed under
// title; otherwise the text is written unchanged so it can be redirected
// into a file.
func (p *Printer) Snippet(title, body string) {
	if !p.isTTY {
		mustWrite(fmt.Fprintln(p.w, body))
		return
	}
	content := body
	if title != "" {
		content = p.styles.title.Render(title) + "\n\n" + body
	}
	mustWrite(fmt.Fprintln(p.w, p.styles.frame.Render(content)))
}

// Table renders rows under headers. On a terminal the table gets rounded
// borders; otherwise it is written as tab separated values so it pipes
// into other tools. Missing cells render empty.
func (p *Printer) Table(headers []string, rows [][]string, aligns ...Alignment) {
	columns := len(headers)
	if columns == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(cells(headers, columns))
	for _, row := range rows {
		tw.AppendRow(cells(row, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	if p.isTTY {
		mustWrite(fmt.Fprintln(p.w, tw.Render()))
		return
	}
	mustWrite(fmt.Fprintln(p.w, tw.RenderTSV()))
}

// cells pads or truncates values to exactly n table cells.
func cells(values []string, n int) table.Row {
	row := make(table.Row, n)
	for i := range n {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// mustWrite panics on a failed write to stdout, stderr or a buffer; the
// CLI has nowhere left to report it.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}
