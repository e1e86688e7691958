package preview

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/markpad/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("")
	s.MarkReady()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestShell(t *testing.T) {
	s, ts := newTestServer(t)
	s.SetDocument("", "notes.md")

	resp, body := get(t, ts.URL+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{`src="/preview/"`, `data-events="/sse"`, `data-event="reload"`, "<title>notes.md - markpad</title>", "/static/preview.js"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in shell:\n%s", want, body)
		}
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "sameorigin" {
		t.Errorf("Expected X-Frame-Options sameorigin, got %q", got)
	}

	resp, _ = get(t, ts.URL+"/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestStaticHasETag(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/static/preview.js", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("Expected an ETag on static assets")
	}
	if ct := resp.Header.Get("Content-Type"); ct != config.CTypeJS {
		t.Errorf("Expected %q, got %q", config.CTypeJS, ct)
	}
	if !strings.Contains(body, "EventSource") {
		t.Error("Expected the preview script")
	}
}

func TestStaticContentType(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/static/preview.js", config.CTypeJS, true},
		{"/static/preview.css", config.CTypeCSS, true},
		{"/static/logo.png", "", false},
	}
	for _, tt := range tests {
		got, ok := staticContentType(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("staticContentType(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPreviewServesLatestPage(t *testing.T) {
	s, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/preview/", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<body></body>") {
		t.Fatalf("Expected an empty document before the first display, got %d %q", resp.StatusCode, body)
	}

	if err := s.Display([]byte("<html>first</html>")); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if err := s.Display([]byte("<html>second</html>")); err != nil {
		t.Fatalf("Display: %v", err)
	}

	resp, body = get(t, ts.URL+"/preview/", nil)
	if body != "<html>second</html>" {
		t.Errorf("Expected the latest page, got %q", body)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("Expected an ETag")
	}

	resp, _ = get(t, ts.URL+"/preview/", http.Header{"If-None-Match": {etag}})
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("Expected 304 for a matching ETag, got %d", resp.StatusCode)
	}
}

func TestDisplayBeforeReady(t *testing.T) {
	s := NewServer("")
	if err := s.Display([]byte("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Expected ErrNotStarted, got %v", err)
	}
	select {
	case <-s.Ready():
		t.Error("Expected the server not to be ready")
	default:
	}
}

func TestPreviewServesDocumentFiles(t *testing.T) {
	s, ts := newTestServer(t)

	resp, _ := get(t, ts.URL+"/preview/images/a.png", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 without a document dir, got %d", resp.StatusCode)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "images", "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.SetDocument(dir, "doc.md")

	resp, body := get(t, ts.URL+"/preview/images/a.png", nil)
	if resp.StatusCode != http.StatusOK || body != "png" {
		t.Errorf("Expected the image next to the document, got %d %q", resp.StatusCode, body)
	}

	resp, _ = get(t, ts.URL+"/preview/../../etc/passwd", nil)
	if resp.StatusCode == http.StatusOK {
		t.Error("Expected paths outside the document dir to be refused")
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("Expected ok, got %d %q", resp.StatusCode, body)
	}
}

func TestEventsBroadcastReload(t *testing.T) {
	s, ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /sse: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, _ := reader.ReadString('\n')
	if strings.TrimSpace(line) != "event: connected" {
		t.Fatalf("Expected connected event, got %q", line)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Display([]byte("<html></html>")); err != nil {
		t.Fatalf("Display: %v", err)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		if strings.HasPrefix(line, "data: reload") {
			break
		}
	}
}

func TestEventsRejectsPost(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/sse", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	if s.URL() != "" {
		t.Error("Expected no URL before Start")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-s.Ready():
	default:
		t.Fatal("Expected ready after Start")
	}

	resp, body := get(t, strings.TrimSuffix(s.URL(), "/")+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("Expected ok, got %d %q", resp.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	sink := NewFileSink(path)

	select {
	case <-sink.Ready():
	default:
		t.Fatal("Expected a file sink to be ready immediately")
	}

	for _, page := range []string{"<html>one</html>", "<html>two</html>"} {
		if err := sink.Display([]byte(page)); err != nil {
			t.Fatalf("Display: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(got) != page {
			t.Errorf("Expected %q, got %q", page, got)
		}
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected no temp files left, got %d entries", len(entries))
	}
}

func TestFileSinkMissingDir(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "missing", "out.html"))
	if err := sink.Display([]byte("x")); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
