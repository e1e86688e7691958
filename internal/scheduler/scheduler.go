// Package scheduler turns a stream of text changes into preview renders. A
// render runs once the text has been quiet for the debounce window, and
// always on the owning loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/model"
	"github.com/debemdeboas/markpad/internal/preview"
	"github.com/debemdeboas/markpad/internal/render"
)

var schedLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	schedLogger = l
}

// Poster runs fn on the loop that owns the document.
type Poster interface {
	Post(fn func()) error
}

type PosterFunc func(fn func()) error

func (f PosterFunc) Post(fn func()) error {
	return f(fn)
}

// Snapshot is what a render needs from the document, taken on the loop.
type Snapshot struct {
	Text  string
	Title string
	Path  string
}

type Config struct {
	Debounce    time.Duration
	Renderer    render.Renderer
	Sink        preview.Sink
	Poster      Poster
	SyntaxTheme string

	// Source is called on the loop when a render starts.
	Source func() Snapshot
	// OnError receives every render or display failure as a *render.Error.
	OnError func(error)
	// OnRendered is called after a page reached the sink.
	OnRendered func(*model.Page)

	Hidden bool
}

type Scheduler struct {
	cfg Config

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool

	// Loop-only.
	visible bool
}

func New(cfg Config) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultPreviewDebounce
	}
	return &Scheduler{
		cfg:     cfg,
		visible: !cfg.Hidden,
	}
}

// Start renders once the sink becomes ready. Requests before that are
// dropped.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		select {
		case <-s.cfg.Sink.Ready():
			schedLogger.Debug().Msg("Preview sink ready")
			s.post(s.RenderNow)
		case <-ctx.Done():
		}
	}()
}

// Notify arms the debounce timer, cancelling a pending one. Safe to call
// from any goroutine.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
}

// fire runs on the timer goroutine. A timer whose Stop lost the race sees a
// newer generation and does nothing.
func (s *Scheduler) fire(gen uint64) {
	if !s.current(gen) {
		return
	}
	s.post(func() {
		if s.current(gen) {
			s.RenderNow()
		}
	})
}

func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && gen == s.gen
}

func (s *Scheduler) post(fn func()) {
	if err := s.cfg.Poster.Post(fn); err != nil {
		schedLogger.Debug().Err(err).Msg("Render not posted")
	}
}

// Stop cancels a pending render. Later notifications are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// SetVisible shows or hides the preview. Showing renders right away even if
// the text did not change. Loop-only.
func (s *Scheduler) SetVisible(visible bool) {
	s.visible = visible
	if visible {
		s.RenderNow()
	}
}

func (s *Scheduler) Visible() bool {
	return s.visible
}

// RenderNow renders the current snapshot. Loop-only.
func (s *Scheduler) RenderNow() {
	s.Render(s.cfg.Source())
}

// Render delivers one page to the sink. It is a no-op while the preview is
// hidden or the sink not ready; failures go to OnError and never escape.
// Loop-only.
func (s *Scheduler) Render(snap Snapshot) {
	if !s.visible {
		return
	}
	select {
	case <-s.cfg.Sink.Ready():
	default:
		schedLogger.Debug().Msg("Preview sink not ready, render dropped")
		return
	}

	md := []byte(snap.Text)
	fragment, err := s.cfg.Renderer.Render(md)
	if err != nil {
		s.report(&render.Error{Stage: "render", Err: err})
		return
	}

	page := model.NewPage(md, fragment, snap.Title, snap.Path)
	html, err := render.WrapPage(page, s.cfg.SyntaxTheme)
	if err != nil {
		s.report(&render.Error{Stage: "render", Err: err})
		return
	}

	if err := s.cfg.Sink.Display(html); err != nil {
		s.report(&render.Error{Stage: "display", Err: err})
		return
	}

	schedLogger.Debug().Str("title", page.GetTitle()).Int("bytes", len(html)).Msg("Preview updated")
	if s.cfg.OnRendered != nil {
		s.cfg.OnRendered(page)
	}
}

func (s *Scheduler) report(err error) {
	schedLogger.Warn().Err(err).Msg("Preview update failed")
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
	}
}
