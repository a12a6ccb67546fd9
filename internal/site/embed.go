// Package site embeds the default page directory and static assets.
//
// The pages directory holds the shell parts (header, navbar, sidebar,
// footer) next to the content pages, exactly like an on-disk page directory
// configured with pages.dir.
package site

import (
	"embed"
	"io/fs"

	"github.com/spf13/afero"
)

//go:embed pages/*.html
var pagesFS embed.FS

//go:embed static/*.css static/*.js
var staticFS embed.FS

// Pages returns the embedded page directory as a read-only afero.Fs rooted
// at the directory itself.
func Pages() afero.Fs {
	return afero.NewReadOnlyFs(afero.FromIOFS{FS: sub(pagesFS, "pages")})
}

// PageFs returns the page directory to serve: the embedded pages when dir
// is empty, otherwise dir on the OS filesystem. Either way the result is
// rooted at the directory, so pages are addressed by bare file name.
func PageFs(dir string) afero.Fs {
	if dir == "" {
		return Pages()
	}
	return afero.NewBasePathFs(afero.NewOsFs(), dir)
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	return sub(staticFS, "static")
}

func sub(fsys embed.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		// dir is a compile-time constant matched by the embed pattern
		panic(err)
	}
	return s
}
