// Package model defines the data handed between the preview pipeline and its
// templates.
package model

import (
	"html/template"
	"time"

	"github.com/debemdeboas/markpad/internal/util"
)

// Page is one rendered snapshot of the document.
type Page struct {
	// Title is the fallback title, usually the document's file name.
	Title   string
	Content template.HTML
	// Path of the document, empty while unsaved.
	Path string

	MDContentHash string
	Markdown      []byte
	RenderedAt    time.Time

	// Optional data from the front matter.
	Info *util.ExtendedTitleData
}

// NewPage builds a page for rendered markdown. The front matter, when there
// is one, supplies the title.
func NewPage(md, rendered []byte, title, path string) *Page {
	p := &Page{
		Title:         title,
		Content:       template.HTML(rendered),
		Path:          path,
		MDContentHash: util.ContentHash(md),
		Markdown:      md,
		RenderedAt:    time.Now(),
	}
	if info, err := util.GetFrontMatter(md); err == nil {
		p.Info = info
	}
	return p
}

func (p *Page) GetTitle() string {
	if t := p.Info.DisplayTitle(); t != "" {
		return t
	}
	return p.Title
}
