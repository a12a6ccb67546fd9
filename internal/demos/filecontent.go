package demos

import (
	"context"
	"io"
	"os"

	"github.com/a-h/templ"
	"github.com/spf13/afero"
)

// ReadPage returns the content of a file of the page directory, or
// "File not found." when it does not exist.
func ReadPage(fsys afero.Fs, name string) (string, error) {
	if fsys == nil || name == "" {
		return "File not found.", nil
	}
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		if os.IsNotExist(err) {
			return "File not found.", nil
		}
		return "", err
	}
	return string(data), nil
}

// FileContent shows the escaped source of the landing page.
func FileContent() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		env := EnvFrom(ctx)
		content, err := ReadPage(env.Pages, env.Index)
		if err != nil {
			return err
		}

		p := newPrinter(w)
		p.tag("h1", "File Content")
		p.raw("<pre>")
		p.text("%s", content)
		p.raw("</pre>\n")
		return p.err
	})
}
