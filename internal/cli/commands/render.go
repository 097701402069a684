package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Renderer writes command results as a table or as indented JSON.
type Renderer struct {
	w    io.Writer
	json bool
}

// NewRenderer creates a renderer for the given output format.
// Anything other than "json" renders tables.
func NewRenderer(w io.Writer, format string) *Renderer {
	return &Renderer{w: w, json: format == "json"}
}

// JSON reports whether the renderer emits JSON.
func (r *Renderer) JSON() bool {
	return r.json
}

// Render writes v as JSON, or the header and rows as a table.
func (r *Renderer) Render(v any, header []string, rows [][]string) error {
	if r.json {
		return r.renderJSON(v)
	}
	return r.renderTable(header, rows)
}

// Message writes v as JSON, or a plain line of text.
func (r *Renderer) Message(v any, format string, args ...any) error {
	if r.json {
		return r.renderJSON(v)
	}
	_, err := fmt.Fprintf(r.w, format+"\n", args...)
	return err
}

func (r *Renderer) renderTable(header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(r.w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	t.Render()
	_, _ = fmt.Fprintf(r.w, "(%d rows)\n", len(rows))
	return nil
}

func (r *Renderer) renderJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
