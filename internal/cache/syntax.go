package cache

import "html/template"

var syntaxCache = NewCache[string, template.CSS]()

// GetSyntaxCSS returns the generated chroma stylesheet for a syntax theme.
func GetSyntaxCSS(theme string) (template.CSS, bool) {
	return syntaxCache.Get(theme)
}

func SetSyntaxCSS(theme string, css template.CSS) {
	syntaxCache.Set(theme, css)
}
