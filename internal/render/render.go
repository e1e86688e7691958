// Package render turns markdown into HTML fragments and wraps them in the
// standalone preview page.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gm_parser "github.com/yuin/goldmark/parser"
	gm_html "github.com/yuin/goldmark/renderer/html"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"

	"github.com/debemdeboas/markpad/internal/cache"
	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/theme"
	"github.com/debemdeboas/markpad/internal/util"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// Renderer converts markdown into an HTML fragment.
type Renderer interface {
	Render(md []byte) ([]byte, error)
}

// Error is a failure of one preview stage. Stage is "render" or "display".
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preview %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Engine is a Renderer bound to one markdown engine and syntax theme. The
// theme is always a light one.
type Engine struct {
	Name        string
	SyntaxTheme string
}

func New(engine, syntaxTheme string) (*Engine, error) {
	switch engine {
	case config.EngineGoldmark, config.EngineClassic, config.EngineMmark:
	case "":
		engine = config.DefaultPreviewEngine
	default:
		return nil, fmt.Errorf("unknown markdown engine %q", engine)
	}
	return &Engine{
		Name:        engine,
		SyntaxTheme: theme.LightSyntaxTheme(syntaxTheme),
	}, nil
}

// Variant identifies the cache partition of this engine's output.
func (e *Engine) Variant() string {
	return e.Name + ":" + e.SyntaxTheme
}

// Render goes through the rendered markdown cache. A panic inside one of the
// markdown libraries is returned as an error.
func (e *Engine) Render(md []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			renderLogger.Error().Interface("panic", r).Str("engine", e.Name).Msg("Markdown engine panicked")
			out, err = nil, fmt.Errorf("%s engine: %v", e.Name, r)
		}
	}()

	out, _, err = RenderMarkdownCached(md, util.ContentHash(md), e.Name, e.SyntaxTheme)
	return out, err
}

func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	style := styles.Get(highlightTheme)
	formatter := theme.GetFormatter()
	err = formatter.Format(&buf, style, iterator)
	if err != nil {
		return code
	}

	// The formatter escapes code text, so callouts are matched in escaped form.
	return config.RegexCallout.ReplaceAllString(buf.String(), "<span class=\"callout\">$1</span>")
}

// RenderMarkdown renders md with the named engine. The extra value is the
// mmark title block, nil for the other engines.
func RenderMarkdown(md []byte, engine, highlightTheme string) ([]byte, any, error) {
	switch engine {
	case config.EngineMmark:
		out, info := RenderMarkdownMmark(md, highlightTheme)
		return out, info, nil
	case config.EngineClassic:
		return RenderMarkdownClassic(util.StripFrontMatter(md), highlightTheme), nil, nil
	default:
		out, err := RenderMarkdownGoldmark(util.StripFrontMatter(md), highlightTheme)
		return out, nil, err
	}
}

// Mutex to protect the check-render-set operation in RenderMarkdownCached
var renderCacheMutex sync.Mutex

func RenderMarkdownCached(md []byte, contentHash, engine, highlightTheme string) ([]byte, any, error) {
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		return RenderMarkdown(md, engine, highlightTheme)
	}

	variant := engine + ":" + highlightTheme

	// First check cache without locking (fast path for cache hits)
	if cached, found := cache.GetRenderedMarkdown(contentHash, variant); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("variant", variant).Msg("Cache hit for rendered markdown")
		return cached.HTML, cached.Extra, nil
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("variant", variant).Msg("Cache miss for rendered markdown")
	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	html, extra, err := RenderMarkdown(md, engine, highlightTheme)
	if err != nil {
		return nil, nil, err
	}
	cache.SetRenderedMarkdown(contentHash, variant, html, extra)

	return html, extra, nil
}

// One goldmark instance per syntax theme; instances are safe for concurrent use.
var goldmarkEngines = cache.NewCache[string, goldmark.Markdown]()

func goldmarkFor(highlightTheme string) goldmark.Markdown {
	if md, ok := goldmarkEngines.Get(highlightTheme); ok {
		return md
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightTheme),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			gm_parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gm_html.WithUnsafe(),
		),
	)
	goldmarkEngines.Set(highlightTheme, md)
	return md
}

func RenderMarkdownGoldmark(md []byte, highlightTheme string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmarkFor(highlightTheme).Convert(md, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func RenderMarkdownClassic(md []byte, highlightTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags:    md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				highlighted := HighlightCode(string(code.Literal), lang, highlightTheme)
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", highlighted)
				return ast.GoToNext, true
			}

			if callout, ok := node.(*ast.Callout); ok && entering {
				fmt.Fprintf(w, "<span class=\"callout\">%s</span>", callout.ID)
				return ast.GoToNext, true
			}

			return ast.GoToNext, false
		},
	}

	// No Includes: a preview of untrusted text must not read arbitrary files.
	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists | parser.MathJax |
			parser.AutoHeadingIDs | parser.Footnotes | parser.OrderedListStart | parser.Attributes |
			parser.NonBlockingSpace,
	).Parse(md)
	rendered := markdown.Render(doc, md_html.NewRenderer(opts))

	return rendered
}

func RenderMarkdownMmark(md []byte, highlightTheme string) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions((mparser.Extensions | parser.NoIntraEmphasis) &^ parser.Includes)

	var info *mast.TitleData

	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		Flags: parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)

	mparser.AddIndex(doc)

	// There's a possibility that info.Language is a nil pointer
	// so we need to check for that before passing it to the lang.New function
	if info == nil {
		info = &mast.TitleData{
			Title:    "Untitled",
			Language: "en",
		}
	}

	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(info.Language),
	}

	opts := md_html.RendererOptions{
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				highlighted := HighlightCode(string(code.Literal), lang, highlightTheme)
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", highlighted)
				return ast.GoToNext, true
			}

			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	renderer := md_html.NewRenderer(opts)

	x := markdown.Render(doc, renderer)

	return x, info
}
