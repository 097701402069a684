// Package components renders record fragments and page chrome as templ
// components. Every fragment's root element carries its region id so a
// datastar patch morphs it into place.
package components

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer accumulates markup and keeps the first write error.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (w *Writer) Raw(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.w, p)
	}
}

// Text writes escaped text.
func (w *Writer) Text(s string) {
	w.Raw(templ.EscapeString(s))
}

// Textf formats and writes escaped text.
func (w *Writer) Textf(format string, args ...any) {
	w.Text(fmt.Sprintf(format, args...))
}

// Attr writes ` name="value"` with the value escaped.
func (w *Writer) Attr(name, value string) {
	w.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// SignalsAttr writes a data-signals attribute holding v as JSON.
func (w *Writer) SignalsAttr(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		if w.err == nil {
			w.err = fmt.Errorf("marshal signals: %w", err)
		}
		return
	}
	w.Attr("data-signals", string(b))
}

// Component renders a nested component.
func (w *Writer) Component(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

// Component builds a templ component from a Writer-based body.
func Component(body func(ctx context.Context, w *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		body(ctx, w)
		return w.Err()
	})
}

// Action expressions for datastar backend actions.

// Get returns a datastar GET action for path.
func Get(path string) string { return fmt.Sprintf("@get('%s')", path) }

// Post returns a datastar POST action for path.
func Post(path string) string { return fmt.Sprintf("@post('%s')", path) }

// Put returns a datastar PUT action for path.
func Put(path string) string { return fmt.Sprintf("@put('%s')", path) }

// Delete returns a datastar DELETE action for path.
func Delete(path string) string { return fmt.Sprintf("@delete('%s')", path) }

// Confirmed guards an action behind a browser confirmation prompt.
func Confirmed(question, action string) string {
	q, _ := json.Marshal(question)
	return fmt.Sprintf("confirm(%s) && %s", q, action)
}
