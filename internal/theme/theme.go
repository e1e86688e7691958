// Package theme handles syntax highlighting styles and CSS generation for the
// preview. The preview is locked to a light colour scheme.
package theme

import (
	"html/template"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/cache"
	"github.com/debemdeboas/markpad/internal/config"
)

var themeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	themeLogger = l
}

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

// GetLightSyntaxThemes lists the styles the preview accepts.
func GetLightSyntaxThemes() []string {
	var names []string
	for _, name := range GetSyntaxThemes() {
		if IsLight(styles.Get(name)) {
			names = append(names, name)
		}
	}
	return names
}

func GetFormatter() *html.Formatter {
	formatter := html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
	return formatter
}

func luminance(c chroma.Colour) float64 {
	return (0.299*float64(c.Red()) +
		0.587*float64(c.Green()) +
		0.114*float64(c.Blue())) / 255
}

// IsLight reports whether a style draws on a light background. Styles that
// leave the background unset are drawn on the page's white.
func IsLight(style *chroma.Style) bool {
	bg := style.Get(chroma.Background)
	if !bg.Background.IsSet() {
		return true
	}
	return luminance(bg.Background) > 0.5
}

// LightSyntaxTheme returns name when it is a known light style, otherwise
// the default light style.
func LightSyntaxTheme(name string) string {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok || !IsLight(style) {
		if name != "" {
			themeLogger.Warn().Str("syntax_theme", name).Str("using", config.DefaultLightSyntaxTheme).Msg("Syntax theme is unknown or dark, preview stays light")
		}
		return config.DefaultLightSyntaxTheme
	}
	return style.Name
}

func GenerateSyntaxCSS(theme string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return css
	}

	var buf strings.Builder
	formatter := GetFormatter()
	style := styles.Get(theme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Calculate the color of highlighted text given the background color
		// for when the Chroma theme doesn't supply a default
		if luminance(bg.Background) > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	formatter.WriteCSS(&buf, style)
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(theme, css)
	return css
}
