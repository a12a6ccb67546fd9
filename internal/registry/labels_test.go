package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{"practical_exe_01.php", "PRACTICAL EXE 01"},
		{"practical_exe_02.html", "PRACTICAL EXE 02"},
		{"index.php", "HOME"},
		{"INDEX.html", "HOME"},
		{"Index.htm", "HOME"},
		{"indexes.html", "INDEXES"},
		{"static_members.html", "STATIC MEMBERS"},
		{"a__b.html", "A  B"},
		{"archive.tar.html", "ARCHIVE.TAR"},
		{"noext", "NOEXT"},
		{"café_crème.html", "CAFÉ CRÈME"},
		{"straße.html", "STRASSE"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayLabel(tt.fileName))
		})
	}
}

func TestLabelForCustomIndex(t *testing.T) {
	assert.Equal(t, "HOME", LabelFor("start.html", "start"))
	assert.Equal(t, "INDEX", LabelFor("index.html", "start"))
}

func TestBaseNameAndExtension(t *testing.T) {
	assert.Equal(t, "practical_exe_01", BaseName("practical_exe_01.html"))
	assert.Equal(t, "html", Extension("practical_exe_01.html"))
	assert.Equal(t, "", BaseName(".html"))
	assert.Equal(t, "", Extension("README"))
	assert.Equal(t, "gz", Extension("dump.tar.gz"))
}

func TestIsReserved(t *testing.T) {
	reserved := []string{"header", "footer", "navbar", "sidebar"}

	tests := []struct {
		fileName string
		expected bool
	}{
		{"header.html", true},
		{"Header.html", true},
		{"FOOTER.php", true},
		{"navbar.html", true},
		{"SideBar.html", true},
		{"headers.html", false},
		{"my_header.html", false},
		{"index.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsReserved(tt.fileName, reserved))
		})
	}

	assert.False(t, IsReserved("header.html", nil))
}
