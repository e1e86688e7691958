// Package app is the terminal editor: a bubbletea model that owns the
// document, runs the command surface and drives the live preview.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/clipboard"
	"github.com/debemdeboas/markpad/internal/clipimage"
	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/document"
	"github.com/debemdeboas/markpad/internal/model"
	"github.com/debemdeboas/markpad/internal/preview"
	"github.com/debemdeboas/markpad/internal/render"
	"github.com/debemdeboas/markpad/internal/repository/editor"
	"github.com/debemdeboas/markpad/internal/scheduler"
	"github.com/debemdeboas/markpad/internal/watch"
)

var appLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	appLogger = l
}

// documentSink is a sink that resolves relative references against the
// document's directory.
type documentSink interface {
	SetDocument(dir, title string)
}

type Options struct {
	Config    *config.Config
	Document  *document.Document
	Renderer  render.Renderer
	Sink      preview.Sink
	Poster    scheduler.Poster
	Clipboard clipboard.Clipboard
	Ingestor  *clipimage.Ingestor
	// Drafts is optional; nil disables crash recovery.
	Drafts editor.Repository
	// DraftID continues an existing draft, e.g. after -recover.
	DraftID    editor.DraftId
	PreviewURL string
	// Watch reloads the open file when it changes on disk.
	Watch bool
}

type Model struct {
	cfg    *config.Config
	doc    *document.Document
	sched  *scheduler.Scheduler
	sink   preview.Sink
	clip   clipboard.Clipboard
	ingest *clipimage.Ingestor

	drafts  editor.Repository
	draftID editor.DraftId
	// draftPath is the path draftID was derived from, empty for untitled.
	draftPath string

	watchFiles bool
	watcher    *watch.Watcher

	commands   *Registry
	modal      modal
	pane       pane
	previewURL string

	width  int
	height int

	statusMsg     string
	statusIsError bool
	statusExpiry  time.Time
	now           func() time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closed      bool
	quitting    bool
}

func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	doc := opts.Document
	if doc == nil {
		doc = document.New()
	}
	ingest := opts.Ingestor
	if ingest == nil {
		ingest = clipimage.NewIngestor(cfg.Images.DirName, cfg.Images.FallbackDir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:        cfg,
		doc:        doc,
		sink:       opts.Sink,
		clip:       opts.Clipboard,
		ingest:     ingest,
		drafts:     opts.Drafts,
		draftID:    opts.DraftID,
		draftPath:  doc.Path(),
		watchFiles: opts.Watch,
		commands:   NewRegistry(DefaultCommands()),
		pane:       newPane(),
		previewURL: opts.PreviewURL,
		width:      80,
		height:     24,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
	m.pane.width, m.pane.height = m.width, m.height-1

	m.sched = scheduler.New(scheduler.Config{
		Debounce:    cfg.Preview.Debounce(),
		Renderer:    opts.Renderer,
		Sink:        opts.Sink,
		Poster:      opts.Poster,
		SyntaxTheme: cfg.Preview.SyntaxTheme,
		Source:      m.snapshot,
		OnError:     m.reportRenderError,
		OnRendered:  m.onRendered,
		Hidden:      !cfg.Preview.Visible,
	})
	m.unsubscribe = doc.Subscribe(m.sched.Notify)

	if m.draftID == "" {
		m.draftID = m.newDraftID()
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	m.sched.Start(m.ctx)
	return tea.Batch(tickCmd(), m.documentChanged())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.pane.width, m.pane.height = msg.Width, max(msg.Height-1, 1)
		return m, nil

	case runMsg:
		msg()
		return m, nil

	case tickMsg:
		m.ClearToast()
		return m, tickCmd()

	case ToastMsg:
		m.showToast(msg.Message, msg.Duration, msg.IsError)
		return m, nil

	case fileEventMsg:
		return m, m.handleFileEvent(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.modal != nil {
		return m.modal.update(m, msg)
	}
	if !msg.Paste {
		if c, ok := m.commands.ForKey(msg.String()); ok {
			return m.Execute(c.ID)
		}
	}
	m.handleEditKey(msg)
	return nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	body := m.viewEditor()
	if m.modal != nil {
		body = lipgloss.Place(m.pane.width, m.pane.height, lipgloss.Center, lipgloss.Center, m.modal.view(m.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewStatus())
}

func (m *Model) openModal(md modal) {
	m.modal = md
}

func (m *Model) closeModal() {
	m.modal = nil
}

// showToast displays a temporary status message.
func (m *Model) showToast(msg string, d time.Duration, isError bool) {
	if d <= 0 {
		d = DefaultToastDuration
	}
	m.statusMsg = msg
	m.statusIsError = isError
	m.statusExpiry = m.now().Add(d)
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && m.now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

func (m *Model) notice(msg string) {
	m.showToast(msg, DefaultToastDuration, false)
}

func (m *Model) fail(msg string) {
	appLogger.Warn().Msg(msg)
	m.showToast(msg, 2*DefaultToastDuration, true)
}

func (m *Model) showError(title, msg string) {
	appLogger.Error().Str("title", title).Msg(msg)
	m.openModal(&messageModal{title: title, body: msg, isErr: true})
}

func (m *Model) snapshot() scheduler.Snapshot {
	return scheduler.Snapshot{
		Text:  m.doc.Text(),
		Title: m.doc.Name(),
		Path:  m.doc.Path(),
	}
}

func (m *Model) reportRenderError(err error) {
	m.fail(fmt.Sprintf(config.ErrPreviewRenderFmt, err))
}

// onRendered keeps a draft of every modified state that reached the preview.
func (m *Model) onRendered(page *model.Page) {
	if m.drafts == nil || !m.cfg.Drafts.Enabled || !m.doc.IsModified() || m.draftID == "" {
		return
	}
	if err := m.drafts.SaveDraft(m.draftID, m.doc.Path(), page.Markdown); err != nil {
		m.fail(fmt.Sprintf(config.ErrSaveDraftFmt, err))
	}
}

func (m *Model) newDraftID() editor.DraftId {
	if p := m.doc.Path(); p != "" {
		return editor.IdForPath(p)
	}
	if m.drafts == nil {
		return ""
	}
	d, err := m.drafts.CreateDraft()
	if err != nil {
		appLogger.Warn().Err(err).Msg("Could not start a draft")
		return ""
	}
	return d.Id
}

// discardDraft drops the draft of the current document, if any.
func (m *Model) discardDraft() {
	if m.drafts == nil || m.draftID == "" {
		return
	}
	if err := m.drafts.DeleteDraft(m.draftID); err != nil {
		appLogger.Debug().Err(err).Str("draft_id", string(m.draftID)).Msg("Draft not deleted")
	}
}

// documentChanged follows the document to a new file: the draft id, the
// preview's base directory and the file watcher.
func (m *Model) documentChanged() tea.Cmd {
	m.pane = pane{width: m.pane.width, height: m.pane.height, goal: -1, anchor: -1}

	path := m.doc.Path()
	if path != m.draftPath || m.draftID == "" {
		m.draftPath = path
		m.draftID = m.newDraftID()
	}

	if s, ok := m.sink.(documentSink); ok {
		s.SetDocument(m.doc.Dir(), m.doc.Name())
	}

	return m.rewatch()
}

func (m *Model) rewatch() tea.Cmd {
	path := m.doc.Path()
	if m.watcher != nil {
		if m.watcher.Path() == absPath(path) {
			return nil
		}
		m.closeWatcher()
	}
	if !m.watchFiles || path == "" {
		return nil
	}

	w, err := watch.New(path, watch.DefaultDelay)
	if err != nil {
		appLogger.Warn().Err(err).Str("path", path).Msg("Could not watch file")
		return nil
	}
	if !m.doc.IsModified() {
		w.Acknowledge([]byte(m.doc.Text()))
	}
	m.watcher = w
	return waitForFileEvent(w)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (m *Model) closeWatcher() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		appLogger.Debug().Err(err).Msg("Closing file watcher")
	}
	m.watcher = nil
}

// handleFileEvent reloads an unmodified buffer. A modified one is left
// alone with a warning.
func (m *Model) handleFileEvent(msg fileEventMsg) tea.Cmd {
	if msg.w != m.watcher {
		return nil
	}
	next := waitForFileEvent(msg.w)

	switch msg.ev.Kind {
	case watch.Removed:
		m.fail(config.MsgFileRemoved)
	case watch.Changed:
		if m.doc.IsModified() {
			m.fail(config.ErrFileChanged)
			return next
		}
		if err := m.doc.Load(m.doc.Path()); err != nil {
			m.fail(fmt.Sprintf(config.ErrOpenFileFmt, err))
			return next
		}
		m.watcher.Acknowledge(msg.ev.Content)
		m.pane.reset()
		m.notice(config.MsgReloaded)
	}
	return next
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.Close()
	return tea.Quit
}

// Close stops the preview scheduler and the file watcher. It is safe to
// call more than once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.sched.Stop()
	m.cancel()
	m.unsubscribe()
	m.closeWatcher()
}

// Document returns the buffer being edited.
func (m *Model) Document() *document.Document {
	return m.doc
}

// Scheduler returns the preview scheduler.
func (m *Model) Scheduler() *scheduler.Scheduler {
	return m.sched
}
