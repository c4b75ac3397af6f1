package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"videosync/internal/config"
	"videosync/internal/domain"
	"videosync/internal/slug"
)

// Fatal configuration errors. When one of these is returned no items were
// processed; everything else an import run hits lands in Stats.Errors.
var (
	ErrMissingCredential = errors.New("missing api credential")
	ErrMissingChannel    = errors.New("missing channel id")
	ErrUnresolvedUploads = errors.New("could not resolve uploads playlist")
)

// ImportService runs the channel ingestion pipeline: resolve the uploads
// feed, page through video metadata, and create-or-update one content
// record per video. Items are processed sequentially in feed order; a
// single item's failure never aborts the batch.
type ImportService struct {
	source    Source
	store     ContentStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	cfg       config.ImportConfig
	channelID string
	hasAPIKey bool
}

// RunOptions tune a single run.
type RunOptions struct {
	// ChannelID overrides the configured channel for this run.
	ChannelID string
	// Limit truncates the fetched item list before the upsert loop.
	Limit int
}

func NewImportService(
	source Source,
	store ContentStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.ImportConfig,
	channelID string,
	hasAPIKey bool,
) *ImportService {
	return &ImportService{
		source:    source,
		store:     store,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "import"),
		cfg:       cfg,
		channelID: channelID,
		hasAPIKey: hasAPIKey,
	}
}

// Run executes one synchronous import pass and returns aggregate counts.
func (s *ImportService) Run(ctx context.Context, opts RunOptions) (*domain.ImportStats, error) {
	start := time.Now()

	if !s.hasAPIKey {
		return nil, ErrMissingCredential
	}

	channelID := s.channelID
	if opts.ChannelID != "" {
		channelID = opts.ChannelID
	}
	if channelID == "" {
		return nil, ErrMissingChannel
	}

	playlistID := s.source.ResolveUploadsPlaylist(ctx, channelID)
	if playlistID == "" {
		return nil, fmt.Errorf("%w: channel %s", ErrUnresolvedUploads, channelID)
	}

	s.logger.Info("starting import",
		"channel_id", channelID,
		"playlist_id", playlistID,
		"max_pages", s.cfg.MaxPages,
		"limit", opts.Limit,
	)

	stats := &domain.ImportStats{ChannelID: channelID}

	videos, err := s.source.FetchVideos(ctx, playlistID, s.cfg.MaxPages)
	if err != nil {
		// Partial page results are still processed.
		stats.Errors = append(stats.Errors, fmt.Sprintf("pagination stopped early: %v", err))
	}

	if opts.Limit > 0 && len(videos) > opts.Limit {
		videos = videos[:opts.Limit]
	}
	stats.Fetched = len(videos)

	for i := range videos {
		s.importVideo(ctx, &videos[i], stats)
	}

	stats.Duration = time.Since(start)

	s.logger.Info("import completed",
		"fetched", stats.Fetched,
		"created", stats.Created,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", len(stats.Errors),
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *ImportService) importVideo(ctx context.Context, video *domain.RemoteVideo, stats *domain.ImportStats) {
	title := slug.CleanTitle(video.Title, s.cfg.TitleWordCap)
	recordSlug := slug.Build(title, s.cfg.SlugPrefix, s.cfg.SlugTokenCap, s.cfg.SlugCharCap)

	existingID, err := s.findExisting(ctx, video.VideoID, recordSlug)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: lookup: %v", video.VideoID, err))
		return
	}

	if existingID != 0 && s.cfg.SkipExisting {
		stats.Skipped++
		return
	}

	// Enrichment is best-effort; empty results feed the placeholders.
	description := s.source.FetchDescription(ctx, video.VideoID)
	transcript := s.source.FetchTranscript(ctx, video.VideoID)

	record := &domain.ContentRecord{
		Title:      title,
		Slug:       recordSlug,
		Body:       BuildBody(VideoEmbed(video.VideoID), description, transcript),
		Status:     s.cfg.Status,
		CategoryID: s.cfg.CategoryID,
		VideoID:    video.VideoID,
	}

	isNew := existingID == 0
	if isNew {
		err = s.createRecord(ctx, record)
	} else {
		err = s.updateRecord(ctx, existingID, record)
	}
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", video.VideoID, err))
		return
	}

	if isNew {
		stats.Created++
	} else {
		stats.Updated++
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, record, isNew); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: publish: %v", video.VideoID, err))
		}
	}

	s.logger.Debug("imported video",
		"video_id", video.VideoID,
		"record_id", record.ID,
		"slug", record.Slug,
		"new", isNew,
	)
}

type lookupFn func(ctx context.Context) (int64, error)

// findExisting runs the duplicate-detection chain in precedence order:
// primary external-id meta, then the legacy meta field, then exact slug.
// First match wins.
func (s *ImportService) findExisting(ctx context.Context, videoID, recordSlug string) (int64, error) {
	lookups := []lookupFn{
		func(ctx context.Context) (int64, error) {
			return s.store.FindByMeta(ctx, domain.MetaKeyVideoID, videoID)
		},
		func(ctx context.Context) (int64, error) {
			return s.store.FindByMeta(ctx, domain.MetaKeyLegacyVideoID, videoID)
		},
		func(ctx context.Context) (int64, error) {
			return s.store.FindBySlug(ctx, recordSlug)
		},
	}

	for _, lookup := range lookups {
		id, err := lookup(ctx)
		if err != nil {
			return 0, err
		}
		if id != 0 {
			return id, nil
		}
	}
	return 0, nil
}

func (s *ImportService) createRecord(ctx context.Context, record *domain.ContentRecord) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := s.store.Create(txCtx, record)
		if err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		record.ID = id

		if err := s.store.SetMeta(txCtx, id, domain.MetaKeyVideoID, record.VideoID); err != nil {
			return fmt.Errorf("stamp video id: %w", err)
		}

		if record.CategoryID > 0 {
			if err := s.store.AssignCategory(txCtx, id, record.CategoryID); err != nil {
				return fmt.Errorf("assign category: %w", err)
			}
		}
		return nil
	})
}

// updateRecord rewrites the record in place and re-stamps the primary meta
// key, which migrates records matched via the legacy field or slug.
func (s *ImportService) updateRecord(ctx context.Context, id int64, record *domain.ContentRecord) error {
	record.ID = id
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.store.Update(txCtx, id, record); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if err := s.store.SetMeta(txCtx, id, domain.MetaKeyVideoID, record.VideoID); err != nil {
			return fmt.Errorf("stamp video id: %w", err)
		}
		return nil
	})
}
