//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"videosync/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_content.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM content_meta")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM content")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) newRecord(slug string) *domain.ContentRecord {
	return &domain.ContentRecord{
		Title:  "Best AC Repair Tips",
		Slug:   slug,
		Body:   "<p>body</p>",
		Status: domain.StatusDraft,
	}
}

func (s *PostgresIntegrationSuite) TestContentStore_CreateAndGet() {
	store := NewContentStore(s.db)

	id, err := store.Create(s.ctx, s.newRecord("video-best-ac-repair-tips"))
	s.NoError(err)
	s.Greater(id, int64(0))

	record, err := store.GetByID(s.ctx, id)
	s.NoError(err)
	s.Equal("Best AC Repair Tips", record.Title)
	s.Equal("video-best-ac-repair-tips", record.Slug)
	s.Equal(domain.StatusDraft, record.Status)
	s.Equal(int64(0), record.CategoryID)
	s.False(record.CreatedAt.IsZero())
}

func (s *PostgresIntegrationSuite) TestContentStore_Update() {
	store := NewContentStore(s.db)

	id, err := store.Create(s.ctx, s.newRecord("video-original"))
	s.NoError(err)

	updated := s.newRecord("video-original")
	updated.Title = "Updated Title"
	updated.Body = "<p>new body</p>"
	updated.Status = domain.StatusPending
	s.NoError(store.Update(s.ctx, id, updated))

	record, err := store.GetByID(s.ctx, id)
	s.NoError(err)
	s.Equal("Updated Title", record.Title)
	s.Equal("<p>new body</p>", record.Body)
	s.Equal(domain.StatusPending, record.Status)
	s.True(record.UpdatedAt.After(record.CreatedAt) || record.UpdatedAt.Equal(record.CreatedAt))
}

func (s *PostgresIntegrationSuite) TestContentStore_UpdateMissingRow() {
	store := NewContentStore(s.db)

	err := store.Update(s.ctx, 99999, s.newRecord("video-nope"))
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestContentStore_FindByMeta() {
	store := NewContentStore(s.db)

	id, err := store.Create(s.ctx, s.newRecord("video-one"))
	s.NoError(err)
	s.NoError(store.SetMeta(s.ctx, id, domain.MetaKeyVideoID, "abc123"))

	found, err := store.FindByMeta(s.ctx, domain.MetaKeyVideoID, "abc123")
	s.NoError(err)
	s.Equal(id, found)

	found, err = store.FindByMeta(s.ctx, domain.MetaKeyVideoID, "missing")
	s.NoError(err)
	s.Equal(int64(0), found)
}

func (s *PostgresIntegrationSuite) TestContentStore_FindByMeta_OldestWins() {
	store := NewContentStore(s.db)

	first, err := store.Create(s.ctx, s.newRecord("video-one"))
	s.NoError(err)
	second, err := store.Create(s.ctx, s.newRecord("video-two"))
	s.NoError(err)

	s.NoError(store.SetMeta(s.ctx, first, domain.MetaKeyLegacyVideoID, "abc123"))
	s.NoError(store.SetMeta(s.ctx, second, domain.MetaKeyLegacyVideoID, "abc123"))

	found, err := store.FindByMeta(s.ctx, domain.MetaKeyLegacyVideoID, "abc123")
	s.NoError(err)
	s.Equal(first, found)
}

func (s *PostgresIntegrationSuite) TestContentStore_FindBySlug() {
	store := NewContentStore(s.db)

	id, err := store.Create(s.ctx, s.newRecord("video-findable"))
	s.NoError(err)

	found, err := store.FindBySlug(s.ctx, "video-findable")
	s.NoError(err)
	s.Equal(id, found)

	found, err = store.FindBySlug(s.ctx, "video-absent")
	s.NoError(err)
	s.Equal(int64(0), found)
}

func (s *PostgresIntegrationSuite) TestContentStore_SetMeta_Overwrites() {
	store := NewContentStore(s.db)

	id, err := store.Create(s.ctx, s.newRecord("video-one"))
	s.NoError(err)

	s.NoError(store.SetMeta(s.ctx, id, domain.MetaKeyVideoID, "old-id"))
	s.NoError(store.SetMeta(s.ctx, id, domain.MetaKeyVideoID, "new-id"))

	var value string
	err = s.db.GetContext(s.ctx, &value,
		"SELECT meta_value FROM content_meta WHERE content_id = $1 AND meta_key = $2",
		id, domain.MetaKeyVideoID)
	s.NoError(err)
	s.Equal("new-id", value)

	var count int
	err = s.db.GetContext(s.ctx, &count,
		"SELECT COUNT(*) FROM content_meta WHERE content_id = $1", id)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestContentStore_AssignCategory() {
	store := NewContentStore(s.db)

	id, err := store.Create(s.ctx, s.newRecord("video-one"))
	s.NoError(err)
	s.NoError(store.AssignCategory(s.ctx, id, 7))

	record, err := store.GetByID(s.ctx, id)
	s.NoError(err)
	s.Equal(int64(7), record.CategoryID)
}

func (s *PostgresIntegrationSuite) TestContentStore_SlugUniqueConstraint() {
	store := NewContentStore(s.db)

	_, err := store.Create(s.ctx, s.newRecord("video-dupe"))
	s.NoError(err)

	_, err = store.Create(s.ctx, s.newRecord("video-dupe"))
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestContentStore_StatusConstraint() {
	store := NewContentStore(s.db)

	record := s.newRecord("video-bad-status")
	record.Status = "trash"
	_, err := store.Create(s.ctx, record)
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	store := NewContentStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		id, err := store.Create(ctx, s.newRecord("video-tx"))
		if err != nil {
			return err
		}
		return store.SetMeta(ctx, id, domain.MetaKeyVideoID, "tx-video")
	})
	s.NoError(err)

	found, err := store.FindByMeta(s.ctx, domain.MetaKeyVideoID, "tx-video")
	s.NoError(err)
	s.Greater(found, int64(0))
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	store := NewContentStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if _, err := store.Create(ctx, s.newRecord("video-rollback")); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	found, err := store.FindBySlug(s.ctx, "video-rollback")
	s.NoError(err)
	s.Equal(int64(0), found)
}
