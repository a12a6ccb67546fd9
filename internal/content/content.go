// Package content turns a page file into the body of a rendered page.
//
// A content page is an html/template fragment stored in the page directory.
// It is parsed on every render and may call:
//
//	{{ markdown "#### prompt" }}  the exercise prompt, rendered with goldmark
//	{{ demo }}                    the Go demo bound to the page's base name
//	{{ label }}                   the page's menu label
//	{{ file }}                    the page's file name
//
// The template writes straight to the output stream, so whatever a page
// emitted before failing stays visible.
package content

import (
	"bytes"
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/conneroisu/practicals/internal/demos"
	"github.com/conneroisu/practicals/internal/errors"
	"github.com/conneroisu/practicals/internal/registry"
	"github.com/conneroisu/practicals/internal/types"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
)

// DemoLookup finds the demo of a page base name.
type DemoLookup func(name string) (templ.Component, bool)

// Renderer builds body components from page files.
type Renderer struct {
	fs    afero.Fs
	md    goldmark.Markdown
	demos DemoLookup
}

// NewRenderer returns a Renderer reading page files from fsys and binding
// demos from the demos package.
func NewRenderer(fsys afero.Fs) *Renderer {
	return &Renderer{
		fs:    fsys,
		md:    goldmark.New(),
		demos: demos.Lookup,
	}
}

// WithDemos replaces the demo lookup.
func (r *Renderer) WithDemos(lookup DemoLookup) *Renderer {
	r.demos = lookup
	return r
}

// Page returns the body component for entry. Nothing is read until the
// component renders.
func (r *Renderer) Page(entry types.PageEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return r.render(ctx, w, entry)
	})
}

func (r *Renderer) render(ctx context.Context, w io.Writer, entry types.PageEntry) error {
	src, err := afero.ReadFile(r.fs, entry.FileName)
	if err != nil {
		return errors.WrapRender(err, entry.FileName)
	}

	tmpl, err := template.New(entry.FileName).Funcs(r.funcs(ctx, w, entry)).Parse(string(src))
	if err != nil {
		return errors.NewRenderError(errors.ErrCodeTemplate, "parsing content page", err).WithPage(entry.FileName)
	}

	if err := tmpl.Execute(w, nil); err != nil {
		return errors.WrapRender(err, entry.FileName)
	}
	return nil
}

func (r *Renderer) funcs(ctx context.Context, w io.Writer, entry types.PageEntry) template.FuncMap {
	return template.FuncMap{
		"markdown": r.markdown,
		"demo": func() (template.HTML, error) {
			return "", r.demo(ctx, w, entry)
		},
		"label": func() string {
			return entry.DisplayLabel
		},
		"file": func() string {
			return entry.FileName
		},
	}
}

// markdown renders a prompt. Raw HTML in the input is dropped by goldmark.
func (r *Renderer) markdown(input string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	//nolint:gosec // goldmark drops raw HTML without the unsafe option
	return template.HTML(buf.String()), nil
}

// demo streams the page's demo into w, the writer the template is executing
// into. Text before the action has already been written at that point, so
// the demo lands in place and its partial output survives a failure.
func (r *Renderer) demo(ctx context.Context, w io.Writer, entry types.PageEntry) error {
	name := registry.BaseName(entry.FileName)
	component, ok := r.demos(name)
	if !ok {
		return errors.NewRenderError(errors.ErrCodeDemoNotFound, "no demo for "+name, nil).WithPage(entry.FileName)
	}
	return component.Render(ctx, w)
}
