// Package internal contains the implementation packages for practicals.
//
// # Package Organization
//
//   - registry: lists the page directory and derives the navigation entries
//   - shell: writes head, sidebar, body and footer around a page body
//   - content: turns a content page template into a body component
//   - demos: the Go programs the content pages demonstrate
//   - site: the embedded default page directory and static assets
//   - server: HTTP routes, request logging and live reload
//   - watcher: debounced page directory change notifications
//   - config, logging, errors, types, version: shared plumbing
//
// # Rendering
//
// A page render is a straight pipe from the page directory to the output
// stream. The registry is consulted once per render and nothing is cached
// between renders, so a page added to the directory shows up in the menu on
// the next request.
package internal
