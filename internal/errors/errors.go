// Package errors provides the structured error type used across practicals.
//
// Rendering reports failures to the reader as inline text in the page; the
// structured type exists so that callers (the server, the CLI) can tell a
// missing page from an unreadable page directory and log them with context.
package errors

import (
	"errors"
	"strings"
)

// ErrorType is the broad category of a PageError.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeRender     ErrorType = "render"
)

// Error codes.
const (
	ErrCodeRegistryUnavailable = "ERR_REGISTRY_UNAVAILABLE"
	ErrCodePageNotFound        = "ERR_PAGE_NOT_FOUND"
	ErrCodeInvalidPageName     = "ERR_INVALID_PAGE_NAME"
	ErrCodePathTraversal       = "ERR_PATH_TRAVERSAL"
	ErrCodeTemplate            = "ERR_TEMPLATE"
	ErrCodeContentPage         = "ERR_CONTENT_PAGE"
	ErrCodeDemoNotFound        = "ERR_DEMO_NOT_FOUND"
)

// RegistryUnavailableMessage is written in place of the navigation menu when
// the page directory cannot be listed.
const RegistryUnavailableMessage = "Error: Unable to read directory."

// PageError describes a failure tied to one page or to the page directory.
type PageError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Page    string
	Dir     string

	// Recoverable is true when the request can be corrected by the caller,
	// e.g. by asking for another page.
	Recoverable bool
}

// Error formats as "[CODE] page:NAME message: cause", leaving out empty parts.
func (e *PageError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString("[" + e.Code + "] ")
	}
	if e.Page != "" {
		b.WriteString("page:" + e.Page + " ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *PageError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code, so the sentinels below work with errors.Is.
func (e *PageError) Is(target error) bool {
	var t *PageError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithPage records the page file the error belongs to.
func (e *PageError) WithPage(page string) *PageError {
	e.Page = page
	return e
}

// Sentinels for errors.Is.
var (
	ErrRegistryUnavailable = &PageError{Type: ErrorTypeIO, Code: ErrCodeRegistryUnavailable}
	ErrPageNotFound        = &PageError{Type: ErrorTypeValidation, Code: ErrCodePageNotFound}
	ErrInvalidPageName     = &PageError{Type: ErrorTypeValidation, Code: ErrCodeInvalidPageName}
	ErrContentPage         = &PageError{Type: ErrorTypeRender, Code: ErrCodeContentPage}
)

// NewRenderError creates an error raised while a template was prepared or
// executed.
func NewRenderError(code, message string, cause error) *PageError {
	return &PageError{Type: ErrorTypeRender, Code: code, Message: message, Cause: cause}
}

// ErrRegistry creates the fatal error raised when the page directory cannot
// be listed.
func ErrRegistry(dir string, cause error) *PageError {
	return &PageError{
		Type:    ErrorTypeIO,
		Code:    ErrCodeRegistryUnavailable,
		Message: "unable to read directory",
		Cause:   cause,
		Dir:     dir,
	}
}

// ErrNotFound creates a page not found error.
func ErrNotFound(page string) *PageError {
	return &PageError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodePageNotFound,
		Message:     "page not found",
		Page:        page,
		Recoverable: true,
	}
}

// ErrInvalidName creates an invalid page name error.
func ErrInvalidName(page, reason string) *PageError {
	return &PageError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodeInvalidPageName,
		Message:     "invalid page name: " + reason,
		Page:        page,
		Recoverable: true,
	}
}

// ErrTraversal creates a path traversal security error.
func ErrTraversal(path string) *PageError {
	return &PageError{
		Type:    ErrorTypeSecurity,
		Code:    ErrCodePathTraversal,
		Message: "path traversal attempt: " + path,
	}
}

// WrapRender attributes err, raised while page was executing, to that page.
// A PageError keeps its own page and directory when it already has them.
func WrapRender(err error, page string) *PageError {
	if err == nil {
		return nil
	}
	wrapped := &PageError{
		Type:    ErrorTypeRender,
		Code:    ErrCodeContentPage,
		Message: "content page failed",
		Cause:   err,
		Page:    page,
	}
	var pe *PageError
	if errors.As(err, &pe) {
		wrapped.Dir = pe.Dir
		if pe.Page != "" {
			wrapped.Page = pe.Page
		}
	}
	return wrapped
}

// IsRecoverable reports whether err is a PageError the caller can correct.
func IsRecoverable(err error) bool {
	var pe *PageError
	return errors.As(err, &pe) && pe.Recoverable
}

// IsSecurityError reports whether err is a security-related PageError.
func IsSecurityError(err error) bool {
	var pe *PageError
	return errors.As(err, &pe) && pe.Type == ErrorTypeSecurity
}
