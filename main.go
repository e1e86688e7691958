package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/app"
	"github.com/debemdeboas/markpad/internal/clipboard"
	"github.com/debemdeboas/markpad/internal/clipimage"
	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/db"
	"github.com/debemdeboas/markpad/internal/document"
	"github.com/debemdeboas/markpad/internal/logger"
	"github.com/debemdeboas/markpad/internal/mainloop"
	"github.com/debemdeboas/markpad/internal/preview"
	"github.com/debemdeboas/markpad/internal/render"
	"github.com/debemdeboas/markpad/internal/repository/editor"
	"github.com/debemdeboas/markpad/internal/scheduler"
	"github.com/debemdeboas/markpad/internal/theme"
	"github.com/debemdeboas/markpad/internal/watch"
)

const envConfigPath = "MARKPAD_CONFIG"

var (
	errNoFile    = errors.New("a markdown file is required")
	errTooMany   = errors.New("only one file may be given")
	errExclusive = errors.New("-export and -watch cannot be combined")
)

var mainLogger zerolog.Logger

type options struct {
	configPath string
	recover    bool
	export     string
	watch      bool
	version    bool
	file       string
}

func (o options) headless() bool {
	return o.export != "" || o.watch
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	defaultConfig := os.Getenv(envConfigPath)
	if defaultConfig == "" {
		defaultConfig = config.DefaultConfigPath()
	}

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", defaultConfig, "path to the configuration file (env "+envConfigPath+")")
	fs.BoolVar(&o.recover, "recover", false, "open the crash-recovery draft of the file instead of the file")
	fs.StringVar(&o.export, "export", "", "render the file once into this HTML file and exit")
	fs.BoolVar(&o.watch, "watch", false, "serve the preview of the file and re-render when it changes on disk")
	fs.BoolVar(&o.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [file.md]\n\n", config.AppName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		o.file = fs.Arg(0)
	default:
		return o, errTooMany
	}

	if o.export != "" && o.watch {
		return o, errExclusive
	}
	if o.headless() && o.file == "" {
		return o, errNoFile
	}
	return o, nil
}

// effectiveVersion is the module version, or the VCS revision for builds
// from a checkout.
func effectiveVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return "devel-" + s.Value[:7]
		}
	}
	return "devel"
}

func setLoggers(l zerolog.Logger) {
	mainLogger = l
	app.SetLogger(l)
	clipboard.SetLogger(l)
	clipimage.SetLogger(l)
	config.SetLogger(l)
	db.SetLogger(l)
	document.SetLogger(l)
	editor.SetLogger(l)
	preview.SetLogger(l)
	render.SetLogger(l)
	scheduler.SetLogger(l)
	theme.SetLogger(l)
	watch.SetLogger(l)
}

// logOutput picks where logs go. The editor owns the terminal, so it logs
// to a file; headless modes log to stderr.
func logOutput(cfg *config.Config, headless bool) (io.Writer, func()) {
	if headless {
		return os.Stderr, func() {}
	}
	f, err := logger.OpenFile(cfg.Logging.File, config.AppName, config.LogFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging disabled: %v\n", err)
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env is not an error.
	_ = godotenv.Load()

	opts, err := parseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 2
	}
	if opts.version {
		fmt.Printf("%s %s\n", config.AppName, effectiveVersion())
		return 0
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}

	out, closeLog := logOutput(cfg, opts.headless())
	defer closeLog()
	setLoggers(logger.New(cfg.Logging.Level, out))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.export != "":
		err = runExport(cfg, opts.file, opts.export)
	case opts.watch:
		err = runWatch(ctx, cfg, opts.file)
	default:
		err = runEditor(ctx, cfg, opts)
	}
	if err != nil {
		mainLogger.Error().Err(err).Msg("Exiting with error")
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}
	return 0
}

func newRenderer(cfg *config.Config) (*render.Engine, error) {
	return render.New(cfg.Preview.Engine, cfg.Preview.SyntaxTheme)
}

func snapshotOf(doc *document.Document) func() scheduler.Snapshot {
	return func() scheduler.Snapshot {
		return scheduler.Snapshot{Text: doc.Text(), Title: doc.Name(), Path: doc.Path()}
	}
}

// runExport renders in once into out through the same pipeline as the live
// preview.
func runExport(cfg *config.Config, in, out string) error {
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	doc := document.New()
	if err := doc.Load(in); err != nil {
		return err
	}

	var renderErr error
	sched := scheduler.New(scheduler.Config{
		Renderer:    renderer,
		Sink:        preview.NewFileSink(out),
		Poster:      scheduler.PosterFunc(func(fn func()) error { fn(); return nil }),
		SyntaxTheme: cfg.Preview.SyntaxTheme,
		Source:      snapshotOf(doc),
		OnError:     func(err error) { renderErr = err },
	})
	sched.RenderNow()
	if renderErr != nil {
		return renderErr
	}

	mainLogger.Info().Str("in", doc.Path()).Str("out", out).Msg("Exported")
	return nil
}

// runWatch serves the preview of file and re-renders whenever it changes on
// disk. The document lives on a mainloop.Loop.
func runWatch(ctx context.Context, cfg *config.Config, file string) error {
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	doc := document.New()
	if err := doc.Load(file); err != nil {
		return err
	}

	server := preview.NewServer(cfg.Preview.Addr)
	server.SetDocument(doc.Dir(), doc.Name())
	if err := server.Start(); err != nil {
		return fmt.Errorf(config.ErrPreviewInitFmt, err)
	}
	defer shutdown(server)

	loop := mainloop.New(mainloop.DefaultQueueSize)
	sched := scheduler.New(scheduler.Config{
		Debounce:    cfg.Preview.Debounce(),
		Renderer:    renderer,
		Sink:        server,
		Poster:      loop,
		SyntaxTheme: cfg.Preview.SyntaxTheme,
		Source:      snapshotOf(doc),
		OnError: func(err error) {
			mainLogger.Warn().Err(err).Msg("Preview failed")
		},
	})
	defer sched.Stop()
	doc.Subscribe(sched.Notify)
	sched.Start(ctx)

	w, err := watch.New(file, watch.DefaultDelay)
	if err != nil {
		return err
	}
	defer w.Close()
	w.Acknowledge([]byte(doc.Text()))

	go func() {
		for ev := range w.Events() {
			err := loop.Post(func() {
				if ev.Kind == watch.Removed {
					mainLogger.Warn().Str("path", ev.Path).Msg(config.MsgFileRemoved)
					return
				}
				if err := doc.Load(doc.Path()); err != nil {
					mainLogger.Warn().Err(err).Str("path", ev.Path).Msg("Reload failed")
					return
				}
				mainLogger.Info().Str("path", ev.Path).Msg(config.MsgReloaded)
			})
			if err != nil {
				return
			}
		}
	}()

	fmt.Fprintf(os.Stderr, "Previewing %s at %s\n", doc.Name(), server.URL())
	if cfg.Preview.OpenBrowser {
		preview.OpenBrowser(server.URL())
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func shutdown(server *preview.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		mainLogger.Warn().Err(err).Msg("Preview server shutdown")
	}
}

// openDrafts returns the configured draft store. A nil repository means
// drafts are disabled.
func openDrafts(cfg *config.Config) (editor.Repository, func(), error) {
	noop := func() {}
	if !cfg.Drafts.Enabled {
		return nil, noop, nil
	}
	if cfg.Drafts.Backend == config.DraftsBackendMemory {
		return editor.NewMemoryRepository(), noop, nil
	}

	database := db.NewSQLite(draftsPath(cfg))
	if err := database.InitDb(); err != nil {
		return nil, noop, err
	}
	repo, err := editor.NewDBRepository(database, cfg.Drafts.Compression)
	if err != nil {
		database.Close()
		return nil, noop, err
	}
	return repo, func() { database.Close() }, nil
}

// draftsPath is drafts.path, or drafts.db in the user cache directory.
func draftsPath(cfg *config.Config) string {
	if cfg.Drafts.Path != "" {
		return cfg.Drafts.Path
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, config.AppName, config.DraftsFileName)
}

// openDocument prepares the buffer the editor starts with. With recover set
// the draft replaces the file contents; without a file the newest untitled
// draft is restored. A file that does not exist yet starts empty.
func openDocument(file string, recover bool, drafts editor.Repository) (*document.Document, editor.DraftId, error) {
	doc := document.New()

	if recover {
		if drafts == nil {
			return nil, "", errors.New("drafts are disabled")
		}
		d, err := findDraft(drafts, file)
		if err != nil {
			return nil, "", err
		}
		path := d.Path
		if file != "" {
			path = absPath(file)
		}
		doc.LoadText(string(d.Content), path)
		return doc, d.Id, nil
	}

	if file == "" {
		return doc, "", nil
	}
	if err := doc.Load(file); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
		doc.LoadText("", absPath(file))
	}
	return doc, "", nil
}

// findDraft returns the draft of file, or the newest untitled draft when
// file is empty.
func findDraft(drafts editor.Repository, file string) (*editor.Draft, error) {
	if file != "" {
		return drafts.GetDraft(editor.IdForPath(file))
	}

	list, err := drafts.ListDrafts()
	if err != nil {
		return nil, err
	}
	for _, d := range list {
		if d.Path == "" && len(d.Content) > 0 {
			return d, nil
		}
	}
	return nil, editor.ErrDraftNotFound
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// runEditor runs the terminal editor with the browser preview.
func runEditor(ctx context.Context, cfg *config.Config, opts options) error {
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	drafts, closeDrafts, err := openDrafts(cfg)
	if err != nil {
		mainLogger.Warn().Err(err).Msg("Drafts disabled")
	}
	defer closeDrafts()

	doc, draftID, err := openDocument(opts.file, opts.recover, drafts)
	if err != nil {
		return err
	}

	server := preview.NewServer(cfg.Preview.Addr)
	startErr := server.Start()
	defer shutdown(server)

	poster := &app.ProgramPoster{}
	m := app.New(app.Options{
		Config:     cfg,
		Document:   doc,
		Renderer:   renderer,
		Sink:       server,
		Poster:     poster,
		Clipboard:  clipboard.NewSystem(),
		Ingestor:   clipimage.NewIngestor(cfg.Images.DirName, cfg.Images.FallbackDir),
		Drafts:     drafts,
		DraftID:    draftID,
		PreviewURL: server.URL(),
		Watch:      true,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	poster.Set(p)

	if startErr != nil {
		mainLogger.Error().Err(startErr).Msg("Preview unavailable")
		go p.Send(app.ToastMsg{Message: fmt.Sprintf(config.ErrPreviewInitFmt, startErr), Duration: 10 * time.Second, IsError: true})
	} else if cfg.Preview.OpenBrowser {
		preview.OpenBrowser(server.URL())
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
