// Package preview delivers rendered pages to whatever shows them: a browser
// through the local preview server, or a file on disk.
package preview

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var previewLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	previewLogger = l
}

// Sink receives complete HTML documents. Ready is closed once the sink can
// display pages; until then pages are not offered.
type Sink interface {
	Display(page []byte) error
	Ready() <-chan struct{}
}

// FileSink writes every page to Path. It is ready immediately.
type FileSink struct {
	Path  string
	ready chan struct{}
}

func NewFileSink(path string) *FileSink {
	ready := make(chan struct{})
	close(ready)
	return &FileSink{Path: path, ready: ready}
}

func (f *FileSink) Ready() <-chan struct{} {
	return f.ready
}

// Display replaces the file through a rename so readers never see a partial
// page.
func (f *FileSink) Display(page []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp page: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(page); err != nil {
		tmp.Close()
		return fmt.Errorf("write page: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace page: %w", err)
	}

	previewLogger.Debug().Str("path", f.Path).Int("bytes", len(page)).Msg("Page written")
	return nil
}
