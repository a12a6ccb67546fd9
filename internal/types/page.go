// Package types provides common type definitions used throughout practicals.
// This package contains shared types to avoid circular dependencies between packages.
package types

// PageEntry describes one navigable page: the file the sidebar links to and
// the label it shows. Entries are derived on every render and never mutated.
type PageEntry struct {
	// FileName is the literal file name, used as the link target
	FileName string `json:"file_name" yaml:"file_name"`
	// DisplayLabel is the upper-cased, human-readable menu label
	DisplayLabel string `json:"display_label" yaml:"display_label"`
}

// FileEntry is one item of a directory listing as returned by a lister,
// before any filtering.
type FileEntry struct {
	// Name is the base name of the entry, extension included
	Name string
	// Regular reports whether the entry is a regular file
	Regular bool
}
