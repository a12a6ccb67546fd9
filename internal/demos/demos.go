// Package demos holds the Go programs behind the content pages.
//
// Each demo is a templ.Component keyed by the base name of the page that
// shows it ("practical_exe_02" for practical_exe_02.html). Demos write an
// HTML fragment and nothing else; the layout around them belongs to the
// shell. Request-scoped inputs (the page filesystem, a submitted form, the
// mailer) reach a demo through Env in the render context.
package demos

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/a-h/templ"
	"github.com/spf13/afero"
)

// Env carries the request-scoped inputs a demo may read.
type Env struct {
	// Pages is the page directory, read by the file content demo
	Pages afero.Fs
	// Index is the file name of the landing page
	Index string
	// Form holds submitted form values, nil for a plain GET
	Form url.Values
	// Mailer delivers the messages of the mail demos
	Mailer Mailer
	// From is the sender address used by the mail demos
	From string
}

type envKey struct{}

// WithEnv returns a context carrying env.
func WithEnv(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFrom returns the Env stored in ctx, or an empty Env.
func EnvFrom(ctx context.Context) Env {
	env, _ := ctx.Value(envKey{}).(Env)
	return env
}

var catalog = map[string]templ.Component{
	"practical_exe_01": Encapsulation(),
	"practical_exe_02": CarDetails(),
	"practical_exe_03": MultipleCars(),
	"practical_exe_04": Inheritance(),
	"practical_exe_05": Overloading(),
	"practical_exe_06": Interfaces(),
	"practical_exe_07": Constructors(),
	"practical_exe_08": Destructors(),
	"practical_exe_09": Registration(),
	"practical_exe_10": Statics(),
	"practical_exe_11": Traits(),
	"practical_exe_12": Visibility(),
	"practical_exe_13": TypedProperties(),
	"practical_exe_14": FinalTypes(),
	"practical_exe_15": SafeEmail(),
	"practical_exe_16": FileContent(),
	"practical_exe_17": TestMail(),
}

// Lookup returns the demo bound to a page base name.
func Lookup(name string) (templ.Component, bool) {
	c, ok := catalog[name]
	return c, ok
}

// Names returns the base names that have a demo, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// printer writes HTML fragments and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

// raw writes trusted markup.
func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// tag writes one escaped element.
func (p *printer) tag(name, format string, args ...interface{}) {
	p.raw("<" + name + ">" + templ.EscapeString(fmt.Sprintf(format, args...)) + "</" + name + ">\n")
}

func (p *printer) para(format string, args ...interface{}) {
	p.tag("p", format, args...)
}

// text writes escaped text without an element around it.
func (p *printer) text(format string, args ...interface{}) {
	p.raw(templ.EscapeString(fmt.Sprintf(format, args...)))
}
