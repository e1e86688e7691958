package editor

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	drafts sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) CreateDraft() (*Draft, error) {
	id := DraftId(uuid.New().String())
	draft := &Draft{
		Id:          id,
		Content:     []byte{},
		ModifiedAt:  time.Now().UTC(),
		Initialized: false,
	}
	m.drafts.Store(id, draft)
	return clone(draft), nil
}

func (m *MemoryRepository) SaveDraft(id DraftId, path string, content []byte) error {
	if _, ok := m.drafts.Load(id); !ok && len(content) == 0 {
		return nil
	}

	m.drafts.Store(id, &Draft{
		Id:          id,
		Path:        path,
		Content:     slices.Clone(content),
		ModifiedAt:  time.Now().UTC(),
		Initialized: len(content) > 0,
	})
	return nil
}

func (m *MemoryRepository) GetDraft(id DraftId) (*Draft, error) {
	if draft, ok := m.drafts.Load(id); ok {
		return clone(draft.(*Draft)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
}

func (m *MemoryRepository) DeleteDraft(id DraftId) error {
	m.drafts.Delete(id)
	return nil
}

func (m *MemoryRepository) ListDrafts() ([]*Draft, error) {
	var drafts []*Draft
	m.drafts.Range(func(_, value any) bool {
		drafts = append(drafts, clone(value.(*Draft)))
		return true
	})
	sortNewestFirst(drafts)
	return drafts, nil
}

func clone(d *Draft) *Draft {
	c := *d
	c.Content = slices.Clone(d.Content)
	return &c
}

func sortNewestFirst(drafts []*Draft) {
	slices.SortStableFunc(drafts, func(a, b *Draft) int {
		return -a.ModifiedAt.Compare(b.ModifiedAt)
	})
}
