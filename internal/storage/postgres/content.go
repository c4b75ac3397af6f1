package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"videosync/internal/domain"
)

// ContentStore persists content records and their meta keys. Lookups used
// by duplicate detection return 0 when nothing matches.
type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) FindByMeta(ctx context.Context, metaKey, metaValue string) (int64, error) {
	query := `
		SELECT content_id FROM content_meta
		WHERE meta_key = $1 AND meta_value = $2
		ORDER BY content_id
		LIMIT 1`

	var id int64
	err := sqlx.GetContext(ctx, executor(ctx, s.db), &id, query, metaKey, metaValue)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *ContentStore) FindBySlug(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, executor(ctx, s.db), &id,
		"SELECT id FROM content WHERE slug = $1", slug)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *ContentStore) Create(ctx context.Context, record *domain.ContentRecord) (int64, error) {
	query := `
		INSERT INTO content (title, slug, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`

	now := time.Now().UTC()

	var id int64
	err := executor(ctx, s.db).QueryRowxContext(ctx, query,
		record.Title,
		record.Slug,
		record.Body,
		record.Status,
		now,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *ContentStore) Update(ctx context.Context, id int64, record *domain.ContentRecord) error {
	query := `
		UPDATE content SET
			title = $2,
			slug = $3,
			body = $4,
			status = $5,
			updated_at = $6
		WHERE id = $1`

	result, err := executor(ctx, s.db).ExecContext(ctx, query,
		id,
		record.Title,
		record.Slug,
		record.Body,
		record.Status,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *ContentStore) SetMeta(ctx context.Context, id int64, metaKey, metaValue string) error {
	query := `
		INSERT INTO content_meta (content_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (content_id, meta_key) DO UPDATE SET
			meta_value = EXCLUDED.meta_value`

	_, err := executor(ctx, s.db).ExecContext(ctx, query, id, metaKey, metaValue)
	return err
}

func (s *ContentStore) AssignCategory(ctx context.Context, id, categoryID int64) error {
	_, err := executor(ctx, s.db).ExecContext(ctx,
		"UPDATE content SET category_id = $2 WHERE id = $1", id, categoryID)
	return err
}

// GetByID loads a full record, mostly for verification and tooling.
func (s *ContentStore) GetByID(ctx context.Context, id int64) (*domain.ContentRecord, error) {
	query := `
		SELECT id, title, slug, body, status,
		       COALESCE(category_id, 0) AS category_id,
		       created_at, updated_at
		FROM content
		WHERE id = $1`

	var record domain.ContentRecord
	if err := sqlx.GetContext(ctx, executor(ctx, s.db), &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}
