package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/practicals/internal/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSListerMemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("pages/assets", 0o755))
	for _, name := range []string{"index.html", "header.html", "practical_exe_01.html", "notes.txt"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("pages", name), []byte("x"), 0o644))
	}

	lister := NewFSLister(fs, "pages")
	assert.Equal(t, "pages", lister.Dir())

	entries, err := lister.List(context.Background())
	require.NoError(t, err)

	byName := make(map[string]types.FileEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Len(t, byName, 5)
	assert.True(t, byName["index.html"].Regular)
	assert.True(t, byName["notes.txt"].Regular)
	assert.False(t, byName["assets"].Regular)
}

func TestFSListerMissingDir(t *testing.T) {
	lister := NewFSLister(afero.NewMemMapFs(), "nowhere")
	_, err := lister.List(context.Background())
	assert.Error(t, err)
}

func TestFSListerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister := NewFSLister(afero.NewMemMapFs(), "")
	assert.Equal(t, ".", lister.Dir())

	_, err := lister.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = lister.Stat(ctx, "index.html")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFSListerStat(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "site/index.html", []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll("site/dir.html", 0o755))

	lister := NewFSLister(fs, "site")

	entry, err := lister.Stat(context.Background(), "index.html")
	require.NoError(t, err)
	assert.Equal(t, types.FileEntry{Name: "index.html", Regular: true}, entry)

	entry, err = lister.Stat(context.Background(), "dir.html")
	require.NoError(t, err)
	assert.False(t, entry.Regular)

	_, err = lister.Stat(context.Background(), "missing.html")
	assert.True(t, os.IsNotExist(err))
}

func TestFSListerOsFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "practical_exe_02.html"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "static"), 0o755))

	link := filepath.Join(dir, "linked.html")
	if err := os.Symlink(filepath.Join(dir, "index.html"), link); err != nil {
		t.Logf("symlinks unavailable: %v", err)
	}

	lister := NewFSLister(afero.NewOsFs(), dir)
	entries, err := lister.List(context.Background())
	require.NoError(t, err)

	regular := map[string]bool{}
	for _, e := range entries {
		regular[e.Name] = e.Regular
	}
	assert.True(t, regular["index.html"])
	assert.True(t, regular["practical_exe_02.html"])
	assert.False(t, regular["static"])
	if _, err := os.Lstat(link); err == nil {
		assert.True(t, regular["linked.html"])
	}
}
