package registry

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conneroisu/practicals/internal/types"
	"github.com/spf13/afero"
)

// Lister returns the entries of the page directory in the order the
// underlying storage produces them.
type Lister interface {
	List(ctx context.Context) ([]types.FileEntry, error)
}

// Stater is an optional interface for Listers that can look up a single
// entry without listing the whole directory.
type Stater interface {
	Stat(ctx context.Context, name string) (types.FileEntry, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context) ([]types.FileEntry, error)

// List calls f.
func (f ListerFunc) List(ctx context.Context) ([]types.FileEntry, error) {
	return f(ctx)
}

var (
	_ Lister = &FSLister{}
	_ Stater = &FSLister{}
)

// FSLister lists one directory of an afero.Fs. On the OS filesystem the
// order is whatever the kernel returns for the directory; nothing is sorted.
type FSLister struct {
	fs  afero.Fs
	dir string
}

// NewFSLister returns a Lister for dir inside fsys.
func NewFSLister(fsys afero.Fs, dir string) *FSLister {
	if dir == "" {
		dir = "."
	}
	return &FSLister{fs: fsys, dir: dir}
}

// Dir returns the directory being listed.
func (l *FSLister) Dir() string {
	return l.dir
}

// List reads the directory in a single pass.
func (l *FSLister) List(ctx context.Context) ([]types.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := l.fs.Open(l.dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}

	entries := make([]types.FileEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, l.entry(info))
	}
	return entries, nil
}

// Stat looks up a single entry of the directory.
func (l *FSLister) Stat(ctx context.Context, name string) (types.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return types.FileEntry{}, err
	}
	info, err := l.fs.Stat(filepath.Join(l.dir, name))
	if err != nil {
		return types.FileEntry{}, err
	}
	return types.FileEntry{Name: name, Regular: info.Mode().IsRegular()}, nil
}

// entry converts a listing item, following symlinks the way a regular-file
// check on the target would.
func (l *FSLister) entry(info os.FileInfo) types.FileEntry {
	regular := info.Mode().IsRegular()
	if info.Mode()&os.ModeSymlink != 0 {
		if target, err := l.fs.Stat(filepath.Join(l.dir, info.Name())); err == nil {
			regular = target.Mode().IsRegular()
		}
	}
	return types.FileEntry{Name: info.Name(), Regular: regular}
}
