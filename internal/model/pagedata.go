package model

import (
	"html/template"

	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/theme"
)

// PageData feeds the standalone preview document.
type PageData struct {
	AppName string
	Title   string

	ColorScheme string

	SyntaxCSS   template.CSS
	SyntaxTheme string

	Content template.HTML
}

func NewPageData(p *Page, syntaxTheme string) *PageData {
	syntaxTheme = theme.LightSyntaxTheme(syntaxTheme)
	return &PageData{
		AppName:     config.AppName,
		Title:       p.GetTitle(),
		ColorScheme: config.PreviewColorScheme,
		SyntaxTheme: syntaxTheme,
		SyntaxCSS:   theme.GenerateSyntaxCSS(syntaxTheme),
		Content:     p.Content,
	}
}

// ShellData feeds the browser page that frames the preview and listens for
// reload events.
type ShellData struct {
	AppName   string
	Title     string
	FrameURL  string
	EventsURL string
	Event     string
}

func NewShellData(title, frameURL, eventsURL string) *ShellData {
	return &ShellData{
		AppName:   config.AppName,
		Title:     title,
		FrameURL:  frameURL,
		EventsURL: eventsURL,
		Event:     config.EventReload,
	}
}
