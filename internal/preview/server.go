package preview

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"path"
	"sync"

	"github.com/debemdeboas/markpad/internal/cache"
	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/model"
	"github.com/debemdeboas/markpad/internal/routes"
	"github.com/debemdeboas/markpad/internal/sse"
	"github.com/debemdeboas/markpad/internal/util"
)

//go:embed templates static
var content embed.FS

var shellTemplate = template.Must(template.ParseFS(content, path.Join(config.TemplatesLocalDir, config.TemplateShell)))

var ErrNotStarted = errors.New("preview server not started")

// Server shows pages in a browser. The shell page at / frames the latest
// page and reloads it whenever Display is called.
type Server struct {
	addr    string
	clients *sse.SSEClients
	mux     *http.ServeMux
	srv     *http.Server

	mu       sync.RWMutex
	page     []byte
	etag     string
	docDir   string
	title    string
	listener net.Listener

	ready     chan struct{}
	readyOnce sync.Once
}

func NewServer(addr string) *Server {
	if addr == "" {
		addr = config.DefaultPreviewAddr
	}
	s := &Server{
		addr:    addr,
		clients: sse.NewSSEClients(),
		ready:   make(chan struct{}),
		title:   "Untitled",
	}

	static, _ := fs.Sub(content, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			data, _ := fs.ReadFile(static, p)
			cache.SetStaticHash(routes.StaticPath+p, util.ContentHash(data))
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle(routes.StaticPath, cacheIt(http.StripPrefix(routes.StaticPath, http.FileServer(http.FS(static))).ServeHTTP))
	mux.HandleFunc(routes.PreviewPath, secureHeaders(s.servePreview))
	mux.HandleFunc(routes.SSEPath, s.eventsHandler)
	mux.HandleFunc(routes.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc(routes.RootPath, secureHeaders(s.serveShell))
	s.mux = mux
	s.srv = &http.Server{Handler: mux}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start binds the listener and serves in the background. Ready is closed
// once the address is bound.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			previewLogger.Error().Err(err).Msg("Preview server stopped")
		}
	}()

	previewLogger.Info().Str("url", s.URL()).Msg("Preview server listening")
	s.MarkReady()
	return nil
}

// MarkReady signals readiness without a listener, for a server mounted on
// another http.Server or an httptest server.
func (s *Server) MarkReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// URL is the address to open in a browser, empty before Start.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String() + routes.RootPath
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	started := s.listener != nil
	s.mu.RUnlock()
	if !started {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Display stores page as the latest document and tells every browser to
// reload it.
func (s *Server) Display(page []byte) error {
	select {
	case <-s.ready:
	default:
		return ErrNotStarted
	}

	s.mu.Lock()
	s.page = page
	s.etag = util.ContentHash(page)
	s.mu.Unlock()

	s.clients.Broadcast(config.EventReload)
	return nil
}

// SetDocument records where the document lives so its relative references
// resolve, and its name for the browser tab.
func (s *Server) SetDocument(dir, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docDir = dir
	s.title = title
}

// Page returns the latest displayed document.
func (s *Server) Page() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

func (s *Server) Clients() int {
	return s.clients.Len()
}

func (s *Server) serveShell(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routes.RootPath {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	title := s.title
	s.mu.RUnlock()

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HCacheControl, "no-cache")
	if err := shellTemplate.Execute(w, model.NewShellData(title, routes.PreviewPath, routes.SSEPath)); err != nil {
		previewLogger.Error().Err(err).Msg("Error executing shell template")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) servePreview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routes.PreviewPath {
		s.serveDocumentFile(w, r)
		return
	}

	s.mu.RLock()
	page, etag := s.page, s.etag
	s.mu.RUnlock()

	if page == nil {
		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<!DOCTYPE html><html><head><meta charset=\"UTF-8\"></head><body></body></html>"))
		return
	}

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set(config.HETag, etag)
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// serveDocumentFile serves files next to the document, e.g. pasted images.
func (s *Server) serveDocumentFile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	dir := s.docDir
	s.mu.RUnlock()

	if dir == "" {
		http.NotFound(w, r)
		return
	}
	http.StripPrefix(routes.PreviewPath, http.FileServer(http.Dir(dir))).ServeHTTP(w, r)
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := sse.NewClient()
	s.clients.Add(client)

	previewLogger.Debug().Str("remote", r.RemoteAddr).Msg("New SSE client connected")

	defer func() {
		s.clients.Delete(client)
		previewLogger.Debug().Str("remote", r.RemoteAddr).Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
			if ctype, ok := staticContentType(r.URL.Path); ok {
				w.Header().Set(config.HCType, ctype)
			}
		}

		h(w, r)
	}
}

// staticContentType pins the type of embedded assets instead of relying on
// the platform's mime table.
func staticContentType(p string) (string, bool) {
	switch path.Ext(p) {
	case ".js":
		return config.CTypeJS, true
	case ".css":
		return config.CTypeCSS, true
	}
	return "", false
}

// The shell frames the preview, so framing is limited to the same origin.
func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "sameorigin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}
