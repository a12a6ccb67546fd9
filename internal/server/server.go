// Package server serves the page directory over HTTP. Every page request
// resolves one file against the example registry and streams it through
// the layout shell. When live reload is enabled, changes to an on-disk page
// directory are pushed to open browsers over a WebSocket.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/conneroisu/practicals/internal/config"
	"github.com/conneroisu/practicals/internal/content"
	"github.com/conneroisu/practicals/internal/demos"
	"github.com/conneroisu/practicals/internal/logging"
	"github.com/conneroisu/practicals/internal/registry"
	"github.com/conneroisu/practicals/internal/shell"
	"github.com/conneroisu/practicals/internal/site"
	"github.com/conneroisu/practicals/internal/watcher"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
)

// Deps are the collaborators a Server is built from. Zero fields fall back
// to what the configuration describes.
type Deps struct {
	// Pages is the page directory. Defaults to site.PageFs(cfg.Pages.Dir).
	Pages afero.Fs
	// Lister lists the page directory. Defaults to listing the root of Pages.
	Lister registry.Lister
	// Static holds the assets served under /static/. Defaults to site.Static().
	Static fs.FS
	// Mailer receives the messages of the mail demos. Defaults to a LogMailer.
	Mailer demos.Mailer
	Logger logging.Logger
}

// Server serves pages with optional live reload.
type Server struct {
	config   *config.Config
	pages    afero.Fs
	registry *registry.Registry
	shell    *shell.Shell
	content  *content.Renderer
	static   fs.FS
	mailer   demos.Mailer
	logger   logging.Logger
	router   chi.Router
	hub      *hub

	watcher      *watcher.FileWatcher
	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once
}

// New creates a server for cfg.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Pages == nil {
		deps.Pages = site.PageFs(cfg.Pages.Dir)
	}
	if deps.Lister == nil {
		deps.Lister = registry.NewFSLister(deps.Pages, ".")
	}
	if deps.Static == nil {
		deps.Static = site.Static()
	}
	if deps.Mailer == nil {
		deps.Mailer = demos.NewLogMailer(deps.Logger)
	}

	reg := registry.New(deps.Lister, registry.PolicyFromConfig(cfg.Pages))
	if _, ok := deps.Lister.(registry.Stater); !ok {
		// Single pages are looked up in the directory the body is read from.
		reg.WithStater(registry.NewFSLister(deps.Pages, "."))
	}

	s := &Server{
		config:   cfg,
		pages:    deps.Pages,
		registry: reg,
		shell:    shell.New(deps.Pages, reg, shell.ConfigFrom(cfg), deps.Logger),
		content:  content.NewRenderer(deps.Pages),
		static:   deps.Static,
		mailer:   deps.Mailer,
		logger:   deps.Logger.WithComponent("server"),
	}
	s.hub = newHub(s.logger)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address from the configuration.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
}

// Start serves until the server is shut down. The live reload hub and file
// watcher stop when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Development.LiveReload {
		go s.hub.run(ctx)
		if err := s.setupFileWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "Page directory is not watched")
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Serving pages", "addr", "http://"+server.Addr, "live_reload", s.config.Development.LiveReload)

	if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupFileWatcher watches an on-disk page directory. The embedded pages
// never change, so there is nothing to watch for them.
func (s *Server) setupFileWatcher(ctx context.Context) error {
	if s.config.Pages.Dir == "" {
		return nil
	}

	delay := time.Duration(s.config.Development.DebounceMs) * time.Millisecond
	fw, err := watcher.NewFileWatcher(delay, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.AnyFilter(watcher.ExtensionFilter(s.config.Pages.Extension), watcher.StaticFilter))
	fw.AddHandler(s.handleFileChange)

	if err := fw.AddPath(s.config.Pages.Dir); err != nil {
		_ = fw.Stop()
		return err
	}
	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}

	s.serverMutex.Lock()
	s.watcher = fw
	s.serverMutex.Unlock()
	return nil
}

// handleFileChange tells every open browser to reload.
func (s *Server) handleFileChange(events []watcher.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	s.logger.Info(context.Background(), "Page directory changed, reloading browsers",
		"files", len(events), "first", events[0].Path)
	return s.hub.broadcastMessage(UpdateMessage{
		Type:      "full_reload",
		Target:    events[0].Path,
		Timestamp: time.Now(),
	})
}

// Shutdown stops the watcher, closes live reload connections and drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.serverMutex.RLock()
		fw := s.watcher
		server := s.httpServer
		s.serverMutex.RUnlock()

		if fw != nil {
			if err := fw.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}

		s.hub.close()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}
