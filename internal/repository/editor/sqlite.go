package editor

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debemdeboas/markpad/internal/db"
	"github.com/debemdeboas/markpad/internal/util/compression"
)

// DBRepository keeps drafts in the database, compressed.
type DBRepository struct {
	db              db.Db
	compressor      compression.Compressor
	compressionName string
}

func NewDBRepository(database db.Db, compressionName string) (*DBRepository, error) {
	compressor, err := compression.New(compressionName)
	if err != nil {
		return nil, err
	}
	if compressionName == "" {
		compressionName = "none"
	}
	return &DBRepository{
		db:              database,
		compressor:      compressor,
		compressionName: compressionName,
	}, nil
}

func (r *DBRepository) CreateDraft() (*Draft, error) {
	return &Draft{
		Id:         DraftId(uuid.New().String()),
		Content:    []byte{},
		ModifiedAt: time.Now().UTC(),
	}, nil
}

func (r *DBRepository) SaveDraft(id DraftId, path string, content []byte) error {
	if len(content) == 0 {
		if _, err := r.GetDraft(id); errors.Is(err, ErrDraftNotFound) {
			return nil
		}
	}

	compressed, err := r.compressor.Compress(content)
	if err != nil {
		return fmt.Errorf("error compressing draft: %w", err)
	}

	res, err := r.db.Exec(
		`INSERT INTO drafts (id, path, content, compression, modified_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET path = excluded.path, content = excluded.content,
			compression = excluded.compression, modified_at = excluded.modified_at`,
		string(id), path, compressed, r.compressionName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving draft: %w", err)
	}

	draftLogger.Debug().Interface("result", res).Str("id", string(id)).Int("bytes", len(content)).Int("stored", len(compressed)).Msg("Draft saved")
	return nil
}

func (r *DBRepository) GetDraft(id DraftId) (*Draft, error) {
	row := r.db.Get().QueryRow(`SELECT id, path, content, compression, modified_at FROM drafts WHERE id = ?`, string(id))
	d, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return d, err
}

func (r *DBRepository) DeleteDraft(id DraftId) error {
	if _, err := r.db.Exec(`DELETE FROM drafts WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("error deleting draft: %w", err)
	}
	return nil
}

func (r *DBRepository) ListDrafts() ([]*Draft, error) {
	rows, err := r.db.Query(`SELECT id, path, content, compression, modified_at FROM drafts ORDER BY modified_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*Draft
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading drafts: %w", err)
	}

	sortNewestFirst(drafts)
	return drafts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan decodes one row. Each row records its own codec, so changing the
// configured compression keeps older drafts readable.
func (r *DBRepository) scan(row scanner) (*Draft, error) {
	var (
		d          Draft
		id         string
		path       sql.NullString
		compressed []byte
		codec      sql.NullString
		modified   sql.NullTime
	)
	if err := row.Scan(&id, &path, &compressed, &codec, &modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning draft: %w", err)
	}

	decompressor, err := compression.New(codec.String)
	if err != nil {
		return nil, fmt.Errorf("draft %s: %w", id, err)
	}
	content, err := decompressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing draft: %w", err)
	}

	d.Id = DraftId(id)
	d.Path = path.String
	d.Content = content
	d.ModifiedAt = modified.Time
	d.Initialized = len(content) > 0
	return &d, nil
}
