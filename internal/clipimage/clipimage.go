// Package clipimage stores clipboard bitmaps next to the document and turns
// pastes into markdown.
package clipimage

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/clipboard"
	"github.com/debemdeboas/markpad/internal/document"
	"github.com/debemdeboas/markpad/internal/edit"
)

var ingestLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	ingestLogger = l
}

const fileNameLayout = "20060102_150405"

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile reports whether path has one of the recognised image
// extensions, ignoring case.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// FileName is the screenshot name for a capture at t. Captures within the
// same second share a name.
func FileName(t time.Time) string {
	return "screenshot_" + t.Format(fileNameLayout) + ".png"
}

// Ingestor writes pasted bitmaps to disk.
type Ingestor struct {
	// DirName is created next to the document, e.g. "images".
	DirName string
	// FallbackDir receives images while the document has no path.
	FallbackDir string

	Now func() time.Time
}

func NewIngestor(dirName, fallbackDir string) *Ingestor {
	if fallbackDir == "" {
		fallbackDir = DefaultFallbackDir(dirName)
	}
	return &Ingestor{
		DirName:     dirName,
		FallbackDir: fallbackDir,
		Now:         time.Now,
	}
}

// Dir resolves where images for the document at docPath are written.
func (in *Ingestor) Dir(docPath string) string {
	if docPath != "" {
		return filepath.Join(filepath.Dir(docPath), in.DirName)
	}
	return in.FallbackDir
}

// Save encodes img as PNG into the image directory and returns its path.
func (in *Ingestor) Save(docPath string, img image.Image) (string, error) {
	dir := in.Dir(docPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	path := filepath.Join(dir, FileName(in.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	ingestLogger.Info().Str("path", path).Msg("Clipboard image saved")
	return path, nil
}

// Ingest saves img and inserts its reference at the cursor of d. On failure
// the document is not touched.
func (in *Ingestor) Ingest(d *document.Document, img image.Image) (string, error) {
	path, err := in.Save(d.Path(), img)
	if err != nil {
		return "", err
	}
	edit.Apply(d, edit.InsertImage(d.Text(), d.Selection(), d.Path(), path))
	return path, nil
}

// Outcome summarises what a paste did.
type Outcome struct {
	Kind clipboard.Kind
	// Saved is the file written for an image paste.
	Saved string
	// Inserted counts image references added for a file list.
	Inserted int
}

// Paste dispatches on the clipboard content: images are ingested, image
// files in a file list are referenced (others skipped silently) and text is
// inserted at the cursor.
func (in *Ingestor) Paste(d *document.Document, c clipboard.Content) (Outcome, error) {
	out := Outcome{Kind: c.Kind}

	switch c.Kind {
	case clipboard.KindImage:
		path, err := in.Ingest(d, c.Image)
		if err != nil {
			return out, err
		}
		out.Saved = path
	case clipboard.KindFiles:
		var refs strings.Builder
		for _, f := range c.Files {
			if !IsImageFile(f) {
				continue
			}
			refs.WriteString(edit.ImageReference(d.Path(), f))
			out.Inserted++
		}
		if out.Inserted > 0 {
			edit.Apply(d, edit.InsertAtCursor(d.Text(), d.Selection(), refs.String()))
		}
	case clipboard.KindText:
		d.InsertText(c.Text)
	}

	return out, nil
}

// DefaultFallbackDir is <documents>/markpad/<dirName>. The documents folder
// is $XDG_DOCUMENTS_DIR, else ~/Documents.
func DefaultFallbackDir(dirName string) string {
	docs := os.Getenv("XDG_DOCUMENTS_DIR")
	if docs == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		docs = filepath.Join(home, "Documents")
	}
	return filepath.Join(docs, "markpad", dirName)
}
