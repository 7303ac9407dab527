// Package components renders the dashboard markup as templ components.
package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so component bodies can emit
// markup without checking every call.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.w, p)
	}
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

// el writes <tag attrs>text</tag> with text escaped.
func (w *writer) el(tag, attrs, text string) {
	w.raw("<", tag)
	if attrs != "" {
		w.raw(" ", attrs)
	}
	w.raw(">")
	w.text(text)
	w.raw("</", tag, ">")
}

func (w *writer) render(c templ.Component) {
	if w.err != nil {
		return
	}
	w.err = c.Render(w.ctx, w.w)
}

func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{ctx: ctx, w: out}
		fn(w)
		return w.err
	})
}

func esc(s string) string { return templ.EscapeString(s) }

// attr renders name="value" with the value escaped.
func attr(name, value string) string {
	return name + `="` + esc(value) + `"`
}

// classes joins the non-empty class names.
func classes(names ...string) string {
	var out []string
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// jsString quotes s for use inside a single-quoted datastar expression.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

// post is a datastar click action.
func post(path string) string {
	return attr("data-on:click", "@post("+jsString(path)+")")
}
