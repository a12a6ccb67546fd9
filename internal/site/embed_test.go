package site

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesHoldsShellParts(t *testing.T) {
	pages := Pages()
	for _, part := range []string{"header.html", "navbar.html", "sidebar.html", "footer.html", "index.html"} {
		ok, err := afero.Exists(pages, part)
		require.NoError(t, err)
		assert.True(t, ok, part)
	}

	err := afero.WriteFile(pages, "new.html", []byte("x"), 0o644)
	assert.Error(t, err, "embedded pages are read-only")
}

func TestPagesListsExercises(t *testing.T) {
	infos, err := afero.ReadDir(Pages(), ".")
	require.NoError(t, err)

	var exercises int
	for _, info := range infos {
		if filepath.Ext(info.Name()) == ".html" && strings.HasPrefix(info.Name(), "practical_exe_") {
			exercises++
		}
	}
	assert.Equal(t, 17, exercises)
}

func TestPageFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("disk"), 0o644))

	data, err := afero.ReadFile(PageFs(dir), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "disk", string(data))

	embedded, err := afero.ReadFile(PageFs(""), "index.html")
	require.NoError(t, err)
	assert.NotEqual(t, "disk", string(embedded))
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"sidebars.css", "livereload.js"} {
		_, err := fs.Stat(Static(), name)
		assert.NoError(t, err, name)
	}
}
