// Package shell renders complete pages: head, navigation sidebar, the
// caller's body and the footer, in that order, straight to the output
// stream.
//
// The shell parts are templates stored in the page directory itself
// (header, navbar, sidebar, footer), parsed on every render. Nothing is
// buffered: when the sidebar cannot list the page directory the shell
// writes an inline error in place of the menu and stops, leaving what was
// already sent in place.
package shell

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/conneroisu/practicals/internal/config"
	"github.com/conneroisu/practicals/internal/errors"
	"github.com/conneroisu/practicals/internal/logging"
	"github.com/conneroisu/practicals/internal/registry"
	"github.com/conneroisu/practicals/internal/types"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage is a step of the per-render state machine.
type Stage int

const (
	StageHeadEmitted Stage = iota
	StageSidebarRendered
	StageBodyExecuting
	StageFooterEmitted
)

func (s Stage) String() string {
	switch s {
	case StageHeadEmitted:
		return "HeadEmitted"
	case StageSidebarRendered:
		return "SidebarRendered"
	case StageBodyExecuting:
		return "BodyExecuting"
	case StageFooterEmitted:
		return "FooterEmitted"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Part base names, looked up with the page extension.
const (
	PartHeader  = "header"
	PartNavbar  = "navbar"
	PartSidebar = "sidebar"
	PartFooter  = "footer"
)

var partNames = []string{PartHeader, PartNavbar, PartSidebar, PartFooter}

const (
	contentOpen  = `<div class="container m-5 p-5" id="content">` + "\n"
	contentClose = "</div>\n"
)

const tracerName = "github.com/conneroisu/practicals/internal/shell"

// Config controls what the shell emits around the body.
type Config struct {
	DefaultTitle string
	Stylesheets  []string
	LiveReload   bool
	Extension    string
}

// ConfigFrom picks the shell settings out of the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		DefaultTitle: cfg.Layout.DefaultTitle,
		Stylesheets:  cfg.Layout.Stylesheets,
		LiveReload:   cfg.Development.LiveReload,
		Extension:    cfg.Pages.Extension,
	}
}

// Shell composes pages. It holds no per-render state and is safe for
// concurrent use.
type Shell struct {
	fs       afero.Fs
	registry *registry.Registry
	cfg      Config
	logger   logging.Logger
	tracer   trace.Tracer
	onStage  func(Stage)
}

// New returns a Shell reading its parts from fsys and its menu from reg.
func New(fsys afero.Fs, reg *registry.Registry, cfg Config, logger logging.Logger) *Shell {
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = "Practical Exercise"
	}
	if cfg.Extension == "" {
		cfg.Extension = "html"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Shell{
		fs:       fsys,
		registry: reg,
		cfg:      cfg,
		logger:   logger.WithComponent("shell"),
		tracer:   otel.Tracer(tracerName),
	}
}

// OnStage registers fn to be called each time a render reaches a stage.
func (s *Shell) OnStage(fn func(Stage)) *Shell {
	s.onStage = fn
	return s
}

type currentPageKey struct{}

// WithCurrentPage marks fileName as the page being rendered so the sidebar
// can highlight it.
func WithCurrentPage(ctx context.Context, fileName string) context.Context {
	return context.WithValue(ctx, currentPageKey{}, fileName)
}

// CurrentPage returns the file name set by WithCurrentPage.
func CurrentPage(ctx context.Context) string {
	name, _ := ctx.Value(currentPageKey{}).(string)
	return name
}

// partData is what every part template sees.
type partData struct {
	Title       string
	Stylesheets []string
	LiveReload  bool
	Current     string

	entries func() ([]types.PageEntry, error)
}

// Entries lists the registry. The sidebar part ranges over it.
func (d partData) Entries() ([]types.PageEntry, error) {
	if d.entries == nil {
		return nil, nil
	}
	return d.entries()
}

// Render writes a complete page. An empty title falls back to the
// configured default.
//
// A registry failure writes errors.RegistryUnavailableMessage where the menu
// would be and returns the registry error; the body and footer are not
// rendered. A body error is returned as is, without the footer.
func (s *Shell) Render(ctx context.Context, w io.Writer, title string, body templ.Component) error {
	current := CurrentPage(ctx)
	ctx, span := s.tracer.Start(ctx, "shell.Render", trace.WithAttributes(
		attribute.String("page.current", current),
	))
	defer span.End()

	if title == "" {
		title = s.cfg.DefaultTitle
	}

	tmpl, err := s.parts()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parsing shell parts")
		return err
	}

	var listErr error
	data := partData{
		Title:       title,
		Stylesheets: s.cfg.Stylesheets,
		LiveReload:  s.cfg.LiveReload,
		Current:     current,
		entries: func() ([]types.PageEntry, error) {
			entries, err := s.registry.Entries(ctx)
			if err != nil {
				listErr = err
			}
			return entries, err
		},
	}

	if err := s.stage(ctx, StageHeadEmitted, func() error {
		return tmpl.ExecuteTemplate(w, PartHeader, data)
	}); err != nil {
		return s.fail(span, errors.WrapRender(err, current))
	}

	if err := s.stage(ctx, StageSidebarRendered, func() error {
		return tmpl.ExecuteTemplate(w, PartSidebar, data)
	}); err != nil {
		if listErr != nil {
			if _, werr := io.WriteString(w, errors.RegistryUnavailableMessage); werr != nil {
				s.logger.Warn(ctx, werr, "Failed to write registry error")
			}
			return s.fail(span, listErr)
		}
		return s.fail(span, errors.WrapRender(err, current))
	}

	if err := s.stage(ctx, StageBodyExecuting, func() error {
		if _, err := io.WriteString(w, contentOpen); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, contentClose)
		return err
	}); err != nil {
		return s.fail(span, err)
	}

	if err := s.stage(ctx, StageFooterEmitted, func() error {
		return tmpl.ExecuteTemplate(w, PartFooter, data)
	}); err != nil {
		return s.fail(span, errors.WrapRender(err, current))
	}

	return nil
}

// stage runs fn under its own span. BodyExecuting is reported before the
// body runs; the other stages once their output is written.
func (s *Shell) stage(ctx context.Context, st Stage, fn func() error) error {
	_, span := s.tracer.Start(ctx, "shell."+st.String())
	defer span.End()

	if st == StageBodyExecuting {
		s.reach(st)
	}

	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.String())
		return err
	}

	if st != StageBodyExecuting {
		s.reach(st)
	}
	return nil
}

func (s *Shell) reach(st Stage) {
	if s.onStage != nil {
		s.onStage(st)
	}
}

func (s *Shell) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// parts parses the four shell parts from the page directory. They are read
// on every render so edits show up without a restart.
func (s *Shell) parts() (*template.Template, error) {
	root := template.New("shell")
	for _, name := range partNames {
		file := name + "." + s.cfg.Extension
		src, err := afero.ReadFile(s.fs, file)
		if err != nil {
			return nil, errors.NewRenderError(errors.ErrCodeTemplate, "reading shell part", err).WithPage(file)
		}
		if _, err := root.New(name).Parse(string(src)); err != nil {
			return nil, errors.NewRenderError(errors.ErrCodeTemplate, "parsing shell part", err).WithPage(file)
		}
	}
	return root, nil
}
