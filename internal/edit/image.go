package edit

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ImageReference returns `![name](path)` for imagePath. The path is made
// relative to the directory of docPath when the document has been saved and
// the two paths share a root; otherwise the absolute path is kept. Either way
// separators are forward slashes.
func ImageReference(docPath, imagePath string) string {
	target := imagePath
	if docPath != "" {
		if rel, ok := relativePath(filepath.Dir(docPath), imagePath); ok {
			target = rel
		}
	}

	target = toSlash(target)
	return fmt.Sprintf("![%s](%s)", path.Base(toSlash(imagePath)), target)
}

func relativePath(baseDir, imagePath string) (string, bool) {
	if strings.HasPrefix(imagePath, "file://") {
		u, err := url.Parse(imagePath)
		if err != nil {
			return "", false
		}
		imagePath = u.Path
	}

	if !filepath.IsAbs(imagePath) || !filepath.IsAbs(baseDir) {
		return "", false
	}
	if filepath.VolumeName(imagePath) != filepath.VolumeName(baseDir) {
		return "", false
	}

	rel, err := filepath.Rel(baseDir, imagePath)
	if err != nil {
		return "", false
	}
	return rel, true
}

func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
