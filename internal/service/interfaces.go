package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"videosync/internal/domain"
)

// Source resolves a channel to its uploads feed and fetches item metadata
// and best-effort enrichment. Resolution and enrichment never return
// errors; empty results stand in for every failure mode.
type Source interface {
	ResolveUploadsPlaylist(ctx context.Context, channelID string) string
	FetchVideos(ctx context.Context, playlistID string, maxPages int) ([]domain.RemoteVideo, error)
	FetchDescription(ctx context.Context, videoID string) string
	FetchTranscript(ctx context.Context, videoID string) []string
}

// ContentStore is the local content collaborator. Find methods return 0
// when no record matches.
type ContentStore interface {
	FindByMeta(ctx context.Context, metaKey, metaValue string) (int64, error)
	FindBySlug(ctx context.Context, slug string) (int64, error)
	Create(ctx context.Context, record *domain.ContentRecord) (int64, error)
	Update(ctx context.Context, id int64, record *domain.ContentRecord) error
	SetMeta(ctx context.Context, id int64, metaKey, metaValue string) error
	AssignCategory(ctx context.Context, id, categoryID int64) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, record *domain.ContentRecord, isNew bool) error
	Close() error
}
