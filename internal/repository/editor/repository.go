// Package editor stores crash-recovery drafts of the buffer being edited.
package editor

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/util"
)

var draftLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	draftLogger = l
}

var ErrDraftNotFound = errors.New("draft not found")

type DraftId string

type Draft struct {
	Id DraftId
	// Path of the document the draft belongs to, empty when untitled.
	Path    string
	Content []byte

	ModifiedAt time.Time

	Initialized bool
}

type Repository interface {
	// CreateDraft starts an empty draft for an untitled document.
	CreateDraft() (*Draft, error)
	SaveDraft(id DraftId, path string, content []byte) error
	GetDraft(id DraftId) (*Draft, error)
	DeleteDraft(id DraftId) error
	// ListDrafts returns every draft, newest first.
	ListDrafts() ([]*Draft, error)
}

// IdForPath is the draft id of a saved document. The same file always maps
// to the same draft.
func IdForPath(path string) DraftId {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return DraftId(util.ContentHashString(path))
}
