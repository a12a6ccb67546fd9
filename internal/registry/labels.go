package registry

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HomeLabel is shown for the index page instead of its derived label.
const HomeLabel = "HOME"

// DefaultIndex is the base name of the landing page.
const DefaultIndex = "index"

// BaseName strips the last extension from a file name:
// "practical_exe_01.html" becomes "practical_exe_01".
func BaseName(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// Extension returns the last extension of a file name without its dot.
func Extension(fileName string) string {
	return strings.TrimPrefix(path.Ext(fileName), ".")
}

// DisplayLabel derives the menu label for a page file using the default
// index name.
func DisplayLabel(fileName string) string {
	return LabelFor(fileName, DefaultIndex)
}

// LabelFor derives the menu label for a page file: extension stripped,
// underscores turned into spaces, upper-cased. Upper-casing follows the
// Unicode full mappings, so "é" becomes "É" and "ß" becomes "SS". The page
// whose base name matches index (ignoring case) is labelled HOME.
func LabelFor(fileName, index string) string {
	name := BaseName(fileName)
	if strings.EqualFold(name, index) {
		return HomeLabel
	}
	// a Caser keeps state between calls, so one per call
	return cases.Upper(language.Und).String(strings.ReplaceAll(name, "_", " "))
}

// IsReserved reports whether the base name of fileName is one of the
// reserved shell-part names. The comparison ignores case so that
// case-insensitive file systems cannot leak "Header.html" into the menu.
func IsReserved(fileName string, reserved []string) bool {
	name := BaseName(fileName)
	for _, r := range reserved {
		if strings.EqualFold(name, r) {
			return true
		}
	}
	return false
}
