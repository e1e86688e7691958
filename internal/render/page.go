package render

import (
	"bytes"
	"embed"
	"html/template"
	"path"

	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/model"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, path.Join(config.TemplatesLocalDir, config.TemplatePage)))

// WrapPage returns the complete standalone HTML document for a rendered page.
func WrapPage(p *model.Page, syntaxTheme string) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, model.NewPageData(p, syntaxTheme)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
