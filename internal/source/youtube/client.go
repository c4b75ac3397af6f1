// Package youtube resolves a channel's uploads feed and pages through its
// video metadata via the Data API v3. Lookups are cached; enrichment calls
// (description, transcript) are best-effort and never fail the caller.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"videosync/internal/cache"
	"videosync/internal/domain"
	"videosync/internal/httpx"
)

// Config holds client configuration.
type Config struct {
	APIKey        string
	APIBaseURL    string
	CaptionsURL   string
	PageSize      int
	PlaylistTTL   time.Duration
	ItemsTTL      time.Duration
	EnrichmentTTL time.Duration
}

// Client talks to the Data API with read-through caching.
type Client struct {
	http   *httpx.Client
	cache  cache.Cache
	cfg    Config
	logger *slog.Logger
}

// New creates a Client.
func New(cfg Config, httpClient *httpx.Client, c cache.Cache, logger *slog.Logger) *Client {
	if cfg.PageSize <= 0 || cfg.PageSize > 50 {
		cfg.PageSize = 50
	}
	if cfg.PlaylistTTL == 0 {
		cfg.PlaylistTTL = time.Hour
	}
	if cfg.ItemsTTL == 0 {
		cfg.ItemsTTL = 10 * time.Minute
	}
	if cfg.EnrichmentTTL == 0 {
		cfg.EnrichmentTTL = 6 * time.Hour
	}
	return &Client{
		http:   httpClient,
		cache:  c,
		cfg:    cfg,
		logger: logger.With("source", "youtube"),
	}
}

// ResolveUploadsPlaylist maps a channel id to its uploads playlist id.
// Any failure — missing credential or channel, non-2xx, malformed payload —
// yields an empty string; the caller decides whether that aborts the run.
// Successful lookups are cached for cfg.PlaylistTTL.
func (c *Client) ResolveUploadsPlaylist(ctx context.Context, channelID string) string {
	if channelID == "" || c.cfg.APIKey == "" {
		return ""
	}

	key := cache.Key("uploads_playlist", channelID)
	if payload, ok := c.cache.Get(ctx, key); ok {
		return string(payload)
	}

	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("id", channelID)
	q.Set("key", c.cfg.APIKey)

	resp, err := c.http.Get(ctx, c.cfg.APIBaseURL+"/channels?"+q.Encode(), nil)
	if err != nil || !resp.OK() {
		c.logger.Warn("channel lookup failed", "channel_id", channelID, "error", err)
		return ""
	}

	var parsed channelsResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || len(parsed.Items) == 0 {
		c.logger.Warn("channel lookup returned no usable payload", "channel_id", channelID)
		return ""
	}

	playlistID := parsed.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if playlistID == "" {
		return ""
	}

	c.cache.Set(ctx, key, []byte(playlistID), c.cfg.PlaylistTTL)
	return playlistID
}

// FetchVideos pages through the uploads playlist, newest first, up to
// maxPages pages. Items without a stable video id are skipped. A page
// failure stops pagination and returns the accumulated items alongside the
// error; partial results are usable. The full accumulated list is cached
// for cfg.ItemsTTL — a cache hit makes no network calls at all.
func (c *Client) FetchVideos(ctx context.Context, playlistID string, maxPages int) ([]domain.RemoteVideo, error) {
	if maxPages <= 0 {
		maxPages = 3
	}

	key := cache.Key("playlist_items", playlistID)
	if payload, ok := c.cache.Get(ctx, key); ok {
		var videos []domain.RemoteVideo
		if err := json.Unmarshal(payload, &videos); err == nil {
			c.logger.Debug("playlist items served from cache", "count", len(videos))
			return videos, nil
		}
	}

	var videos []domain.RemoteVideo
	pageToken := ""

	for page := 0; page < maxPages; page++ {
		resp, err := c.fetchPage(ctx, playlistID, pageToken)
		if err != nil {
			return videos, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails.VideoID == "" {
				continue
			}
			videos = append(videos, toRemoteVideo(item))
		}

		c.logger.Debug("fetched page",
			"page", page,
			"items", len(resp.Items),
			"total", len(videos),
		)

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if payload, err := json.Marshal(videos); err == nil {
		c.cache.Set(ctx, key, payload, c.cfg.ItemsTTL)
	}

	return videos, nil
}

func (c *Client) fetchPage(ctx context.Context, playlistID, pageToken string) (*playlistItemsResponse, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails")
	q.Set("playlistId", playlistID)
	q.Set("maxResults", fmt.Sprintf("%d", c.cfg.PageSize))
	q.Set("key", c.cfg.APIKey)
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	resp, err := c.http.Get(ctx, c.cfg.APIBaseURL+"/playlistItems?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var parsed playlistItemsResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &parsed, nil
}

func toRemoteVideo(item playlistItem) domain.RemoteVideo {
	video := domain.RemoteVideo{
		VideoID:      item.ContentDetails.VideoID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
		ThumbnailURL: item.Snippet.Thumbnails.High.URL,
	}
	if video.ThumbnailURL == "" {
		video.ThumbnailURL = item.Snippet.Thumbnails.Default.URL
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		video.PublishedAt = t
	}
	return video
}
