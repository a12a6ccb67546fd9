package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/coder/websocket"
	"github.com/conneroisu/practicals/internal/config"
	"github.com/conneroisu/practicals/internal/errors"
	"github.com/conneroisu/practicals/internal/logging"
	"github.com/conneroisu/practicals/internal/registry"
	"github.com/conneroisu/practicals/internal/site"
	"github.com/conneroisu/practicals/internal/types"
	"github.com/conneroisu/practicals/internal/watcher"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// unlistable can stat single pages but fails to list the directory.
type unlistable struct {
	*registry.FSLister
}

func (unlistable) List(context.Context) ([]types.FileEntry, error) {
	return nil, fs.ErrPermission
}

func newTestServer(t *testing.T, mutate func(*config.Config), deps Deps) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, deps)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// navLinks walks the parsed document and returns the href of every sidebar
// link in document order.
func navLinks(t *testing.T, body string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href, class string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "href":
					href = attr.Val
				case "class":
					class = attr.Val
				}
			}
			if strings.Contains(class, "nav-link") {
				hrefs = append(hrefs, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	links := navLinks(t, rec.Body.String())
	require.Len(t, links, 18)
	assert.Equal(t, "index.html", links[0])
	assert.Equal(t, "practical_exe_01.html", links[1])
	assert.Equal(t, "practical_exe_17.html", links[17])
	for _, link := range links {
		assert.NotContains(t, []string{"header.html", "footer.html", "navbar.html", "sidebar.html"}, link)
	}

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Practical Exercise", doc.Find("title").Text())
	assert.Equal(t, "HOME", strings.TrimSpace(doc.Find("a.nav-link.active").Text()))
	assert.Equal(t, 1, doc.Find("footer").Length())
}

func TestCarDetailsPage(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	rec := get(t, s.Handler(), "/practical_exe_02.html")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Car Details: 2018 Toyota Corolla")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	href, _ := doc.Find("a.nav-link.active").Attr("href")
	assert.Equal(t, "practical_exe_02.html", href)
	assert.Contains(t, doc.Find("#content").Text(), "Car Details: 2018 Toyota Corolla")
}

func TestPageStatusCodes(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	tests := []struct {
		target string
		status int
	}{
		{"/index.html", http.StatusOK},
		{"/practical_exe_17.html", http.StatusOK},
		{"/missing.html", http.StatusNotFound},
		{"/header.html", http.StatusNotFound},
		{"/practical_exe_01.php", http.StatusNotFound},
		{"/ws", http.StatusNotFound},
		{"/..", http.StatusBadRequest},
		{"/a%3Cb.html", http.StatusBadRequest},
		{"/" + strings.Repeat("a", 101), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRegistrationSubmit(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	form := url.Values{
		"fname":   {"<b>Ada</b>"},
		"lname":   {"Lovelace"},
		"email":   {"ada@example.com"},
		"pwd":     {"secret"},
		"con-pwd": {"secret"},
		"dob":     {"1815-12-10"},
		"submit":  {"Register"},
	}
	req := httptest.NewRequest(http.MethodPost, "/practical_exe_09.html", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "User account created...")
	assert.Contains(t, body, "Method not found")
	assert.Contains(t, body, "<td>Ada</td>")
	assert.NotContains(t, body, "secret")

	plain := get(t, s.Handler(), "/practical_exe_09.html").Body.String()
	assert.Contains(t, plain, `name="fname"`)
	assert.NotContains(t, plain, "User account created")
}

func TestRegistryUnavailable(t *testing.T) {
	pages := site.Pages()
	s := newTestServer(t, nil, Deps{
		Pages:  pages,
		Lister: unlistable{registry.NewFSLister(pages, ".")},
	})

	rec := get(t, s.Handler(), "/practical_exe_02.html")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasSuffix(body, errors.RegistryUnavailableMessage), body)
	assert.NotContains(t, body, "Car Details")
	assert.NotContains(t, body, "<footer")
}

func TestListerFuncWithoutStat(t *testing.T) {
	var calls int
	failing := registry.ListerFunc(func(context.Context) ([]types.FileEntry, error) {
		calls++
		return nil, fs.ErrPermission
	})
	s := newTestServer(t, nil, Deps{Pages: site.Pages(), Lister: failing})

	rec := get(t, s.Handler(), "/practical_exe_02.html")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasSuffix(body, errors.RegistryUnavailableMessage), body)
	assert.NotContains(t, body, "<footer")
	assert.Equal(t, 1, calls)

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/practical_exe_99.html").Code)
	assert.Equal(t, 1, calls, "a missing page is rejected without listing")

	pages := site.Pages()
	working := registry.NewFSLister(pages, ".")
	calls = 0
	counting := registry.ListerFunc(func(ctx context.Context) ([]types.FileEntry, error) {
		calls++
		return working.List(ctx)
	})
	s = newTestServer(t, nil, Deps{Pages: pages, Lister: counting})

	rec = get(t, s.Handler(), "/practical_exe_02.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Car Details: 2018 Toyota Corolla")
	assert.Equal(t, 1, calls)
}

func TestMissingShellPart(t *testing.T) {
	pages := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(pages, "index.html", []byte("hi"), 0o644))
	s := newTestServer(t, nil, Deps{Pages: pages})

	rec := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hi")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Registry struct {
				Status string `json:"status"`
				Pages  int    `json:"pages"`
			} `json:"registry"`
		} `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 18, body.Checks.Registry.Pages)

	pages := site.Pages()
	broken := newTestServer(t, nil, Deps{Pages: pages, Lister: unlistable{registry.NewFSLister(pages, ".")}})
	rec = get(t, broken.Handler(), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.RegistryUnavailableMessage)
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	rec := get(t, s.Handler(), "/static/sidebars.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/static/missing.css").Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil, Deps{})

	rec := get(t, s.Handler(), "/health")
	_, err := uuid.Parse(rec.Header().Get(middleware.RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "not\nan id")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not\nan id", rec.Header().Get(middleware.RequestIDHeader))
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.Host = "0.0.0.0"
		cfg.Server.Port = 9000
	}, Deps{})

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"missing", "", false},
		{"same host", "http://example.test:1234", true},
		{"configured", "http://0.0.0.0:9000", true},
		{"localhost", "http://localhost:9000", true},
		{"loopback", "https://127.0.0.1:9000", true},
		{"other port", "http://localhost:3000", false},
		{"foreign", "http://evil.test", false},
		{"scheme", "file://example.test:1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.test:1234/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, s.checkOrigin(req))
		})
	}
}

func TestLiveReload(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Development.LiveReload = true
	}, Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	page := get(t, s.Handler(), "/")
	assert.Contains(t, page.Body.String(), `<script src="/static/livereload.js"></script>`)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": {"http://evil.test"}},
	})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": {ts.URL}},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return s.hub.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.handleFileChange([]watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: "pages/index.html"},
	}))

	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()
	typ, data, err := conn.Read(readCtx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "full_reload", msg.Type)
	assert.Equal(t, "pages/index.html", msg.Target)

	s.hub.close()
	_, _, err = conn.Read(readCtx)
	assert.Error(t, err)
	assert.ErrorIs(t, s.hub.broadcastMessage(UpdateMessage{Type: "full_reload"}), errHubClosed)
}

func TestHandleFileChangeIgnoresEmptyBatch(t *testing.T) {
	s := newTestServer(t, nil, Deps{})
	assert.NoError(t, s.handleFileChange(nil))
}

func TestShutdownBeforeStart(t *testing.T) {
	s := newTestServer(t, nil, Deps{})
	assert.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestStartAndShutdown(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = 0
		cfg.Pages.Dir = dir
		cfg.Development.LiveReload = true
		cfg.Development.DebounceMs = 10
	}, Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		s.serverMutex.RLock()
		defer s.serverMutex.RUnlock()
		return s.httpServer != nil
	}, 2*time.Second, 10*time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	require.NoError(t, s.Shutdown(shutdownCtx))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(registry.ValidateFileName("..")))
	assert.Equal(t, http.StatusBadRequest, statusFor(registry.ValidateFileName("a;b")))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.ErrNotFound("x.html")))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("resolve: %w", errors.ErrNotFound("x.html"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.ErrRegistry(".", io.ErrUnexpectedEOF)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelInfo, Format: "json", Output: &buf})
	s := newTestServer(t, nil, Deps{Logger: logger})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/missing.html", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	var rejected, access map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		switch rec["msg"] {
		case "Rejected page request":
			rejected = rec
		case "request":
			access = rec
		}
	}

	require.NotNil(t, rejected)
	assert.Equal(t, id, rejected["request_id"])
	assert.Equal(t, "missing.html", rejected["page"])
	assert.Equal(t, "server", rejected["component"])

	require.NotNil(t, access)
	assert.Equal(t, id, access["request_id"])
	assert.Equal(t, "/missing.html", access["path"])
	assert.Equal(t, float64(http.StatusNotFound), access["status"])
}
