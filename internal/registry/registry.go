// Package registry discovers the navigable example pages of the page
// directory and derives their menu labels.
//
// The registry is recomputed on every call: it lists the directory, drops
// everything that is not a page (wrong extension, not a regular file, or one
// of the reserved shell-part names) and labels what remains. Nothing is
// memoised between renders, so a page dropped into the directory shows up on
// the next request.
package registry

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/conneroisu/practicals/internal/config"
	"github.com/conneroisu/practicals/internal/errors"
	"github.com/conneroisu/practicals/internal/types"
)

// Policy decides which directory entries are pages and how they are ordered.
type Policy struct {
	Extension string
	Index     string
	Reserved  []string
	Order     string
}

// PolicyFromConfig builds a Policy from the pages section of the config.
func PolicyFromConfig(cfg config.PagesConfig) Policy {
	return Policy{
		Extension: cfg.Extension,
		Index:     cfg.Index,
		Reserved:  cfg.Reserved,
		Order:     cfg.Order,
	}
}

// DefaultPolicy matches config.Default().
func DefaultPolicy() Policy {
	return Policy{
		Extension: "html",
		Index:     DefaultIndex,
		Reserved:  config.DefaultReserved,
		Order:     config.OrderNative,
	}
}

// Allows reports whether a listed entry is a navigable page.
func (p Policy) Allows(entry types.FileEntry) bool {
	if !entry.Regular {
		return false
	}
	if Extension(entry.Name) != p.Extension {
		return false
	}
	if BaseName(entry.Name) == "" {
		return false
	}
	return !IsReserved(entry.Name, p.Reserved)
}

// Label derives the menu label of a page under this policy.
func (p Policy) Label(fileName string) string {
	index := p.Index
	if index == "" {
		index = DefaultIndex
	}
	return LabelFor(fileName, index)
}

// Registry turns a directory listing into PageEntry values.
type Registry struct {
	lister Lister
	stater Stater
	policy Policy
}

// New returns a Registry reading from lister. A lister that also implements
// Stater is used by Resolve as well.
func New(lister Lister, policy Policy) *Registry {
	stater, _ := lister.(Stater)
	return &Registry{
		lister: lister,
		stater: stater,
		policy: policy,
	}
}

// WithStater sets the lookup Resolve uses for single pages and returns r.
func (r *Registry) WithStater(stater Stater) *Registry {
	r.stater = stater
	return r
}

// Policy returns the filtering policy of the registry.
func (r *Registry) Policy() Policy {
	return r.policy
}

// Entries lists the page directory and returns the navigable pages.
//
// A listing failure is fatal for the caller's render and is reported as
// errors.ErrRegistryUnavailable. It is not retried.
func (r *Registry) Entries(ctx context.Context) ([]types.PageEntry, error) {
	files, err := r.lister.List(ctx)
	if err != nil {
		return nil, errors.ErrRegistry(r.dir(), err)
	}

	entries := make([]types.PageEntry, 0, len(files))
	for _, file := range files {
		if !r.policy.Allows(file) {
			continue
		}
		entries = append(entries, types.PageEntry{
			FileName:     file.Name,
			DisplayLabel: r.policy.Label(file.Name),
		})
	}

	if r.policy.Order == config.OrderName {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].FileName < entries[j].FileName
		})
	}

	return entries, nil
}

// Resolve maps a requested file name to its PageEntry. Reserved names,
// foreign extensions and missing files all resolve to ErrPageNotFound.
//
// Resolve never lists the directory: the listing belongs to the sidebar and
// happens once per render. With a Stater only that one entry is looked up,
// so a page resolves even when the directory cannot be listed and the shell
// reports the listing failure in place of the menu. Without one the name
// alone is checked and a missing file fails when the body is read.
func (r *Registry) Resolve(ctx context.Context, fileName string) (types.PageEntry, error) {
	if err := ValidateFileName(fileName); err != nil {
		return types.PageEntry{}, err
	}

	entry, err := r.lookup(ctx, fileName)
	if err != nil {
		return types.PageEntry{}, err
	}
	if !r.policy.Allows(entry) {
		return types.PageEntry{}, errors.ErrNotFound(fileName)
	}

	return types.PageEntry{
		FileName:     fileName,
		DisplayLabel: r.policy.Label(fileName),
	}, nil
}

func (r *Registry) lookup(ctx context.Context, fileName string) (types.FileEntry, error) {
	if r.stater == nil {
		return types.FileEntry{Name: fileName, Regular: true}, nil
	}

	entry, err := r.stater.Stat(ctx, fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return types.FileEntry{}, errors.ErrNotFound(fileName)
		}
		return types.FileEntry{}, errors.ErrRegistry(r.dir(), err).WithPage(fileName)
	}
	return entry, nil
}

func (r *Registry) dir() string {
	if l, ok := r.lister.(interface{ Dir() string }); ok {
		return l.Dir()
	}
	return "."
}

// ValidateFileName rejects names that could escape the page directory or
// that are not plain file names.
func ValidateFileName(name string) error {
	if name == "" {
		return errors.ErrInvalidName(name, "empty page name")
	}

	if strings.Contains(name, "..") {
		return errors.ErrTraversal(name)
	}

	if strings.ContainsAny(name, `/\`) {
		return errors.ErrInvalidName(name, "path separators not allowed")
	}

	dangerousChars := []string{"<", ">", "\"", "'", "&", ";", "|", "$", "`", "\x00"}
	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return errors.ErrInvalidName(name, "dangerous character not allowed: "+char)
		}
	}

	if len(name) > 100 {
		return errors.ErrInvalidName(name, "page name too long (max 100 characters)")
	}

	return nil
}
