// # Available Commands
//
//   - serve: Serve the page directory over HTTP, optionally with live reload
//   - list: List the navigable pages with their labels
//   - render: Render one page, shell included, to stdout
//   - version: Show build information
//
// # Command Examples
//
//	// Serve the embedded exercises
//	practicals serve --port 3000
//
//	// Serve a page directory and reload browsers on change
//	practicals serve --pages ./site --live-reload
//
//	// List pages as JSON
//	practicals list --format json
//
//	// Render a page to a file
//	practicals render practical_exe_02.html > car.html
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (PRACTICALS_*)
//  3. Configuration file (.practicals.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// Page names are validated before any file is touched; names with path
// separators, ".." or shell metacharacters are rejected. A page directory
// that cannot be listed ends the output with an inline error and makes the
// command exit non-zero.
package cmd
