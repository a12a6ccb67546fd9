package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"time"

	"github.com/conneroisu/practicals/internal/demos"
	"github.com/conneroisu/practicals/internal/errors"
	"github.com/conneroisu/practicals/internal/logging"
	"github.com/conneroisu/practicals/internal/shell"
	"github.com/conneroisu/practicals/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxFormBytes caps the body of a form submission.
const maxFormBytes = 1 << 20

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
	if s.config.Development.LiveReload {
		r.Get("/ws", s.handleWebSocket)
	}

	r.Get("/", s.handleIndex)
	r.Get("/{file}", s.handlePage)
	r.Post("/{file}", s.handlePage)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, s.config.Pages.IndexFile())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, chi.URLParam(r, "file"))
}

// servePage resolves name and streams it through the shell. Once the first
// byte is out the status is fixed, so later failures are only logged; the
// reader sees whatever the shell managed to write.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	logger := s.logger.With("page", logging.SanitizeForLog(name))

	entry, err := s.registry.Resolve(ctx, name)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, err, "Failed to resolve page")
		} else {
			logger.Warn(ctx, err, "Rejected page request")
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	var form url.Values
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			logger.Warn(ctx, err, "Rejected form submission")
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form = r.PostForm
	}

	ctx = shell.WithCurrentPage(ctx, entry.FileName)
	ctx = demos.WithEnv(ctx, demos.Env{
		Pages:  s.pages,
		Index:  s.config.Pages.IndexFile(),
		Form:   form,
		Mailer: s.mailer,
		From:   s.config.Mail.From,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

	if err := s.shell.Render(ctx, ww, "", s.content.Page(entry)); err != nil {
		if ww.BytesWritten() == 0 {
			logger.Error(ctx, err, "Page could not be rendered")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		logger.Error(ctx, err, "Page render stopped early")
	}
}

// statusFor maps a resolve error to an HTTP status. Errors the client can
// correct by asking for another page are 4xx; everything else is a 500.
func statusFor(err error) int {
	switch {
	case errors.IsSecurityError(err):
		return http.StatusBadRequest
	case !errors.IsRecoverable(err):
		return http.StatusInternalServerError
	case stderrors.Is(err, errors.ErrPageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// handleHealth reports whether the page directory can be listed.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "healthy"
	code := http.StatusOK
	check := map[string]interface{}{"status": "healthy"}

	entries, err := s.registry.Entries(ctx)
	if err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		check["status"] = "unhealthy"
		check["message"] = errors.RegistryUnavailableMessage
		s.logger.Warn(ctx, err, "Health check failed")
	} else {
		check["pages"] = len(entries)
	}

	health := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"checks": map[string]interface{}{
			"registry": check,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(ctx, err, "Failed to encode health response")
	}
}
