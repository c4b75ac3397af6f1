package youtube

import (
	"context"
	"encoding/json"
	"html"
	"net/url"
	"strings"

	"videosync/internal/cache"
)

// FetchDescription returns the video's long-form description, or an empty
// string on any failure. Successful lookups are cached; failures are not,
// so the next run retries.
func (c *Client) FetchDescription(ctx context.Context, videoID string) string {
	if videoID == "" || c.cfg.APIKey == "" {
		return ""
	}

	key := cache.Key("video_description", videoID)
	if payload, ok := c.cache.Get(ctx, key); ok {
		return string(payload)
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", videoID)
	q.Set("key", c.cfg.APIKey)

	resp, err := c.http.Get(ctx, c.cfg.APIBaseURL+"/videos?"+q.Encode(), nil)
	if err != nil || !resp.OK() {
		c.logger.Debug("description fetch failed", "video_id", videoID, "error", err)
		return ""
	}

	var parsed videosResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || len(parsed.Items) == 0 {
		return ""
	}

	description := parsed.Items[0].Snippet.Description
	c.cache.Set(ctx, key, []byte(description), c.cfg.EnrichmentTTL)
	return description
}

// FetchTranscript returns the video's caption transcript as ordered,
// HTML-escaped plain-text lines. Many videos simply have no captions; that
// is an expected outcome and yields an empty list, as does any failure at
// either the track-list or track-fetch step. Nothing here ever stops the
// import.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) []string {
	if videoID == "" {
		return nil
	}

	key := cache.Key("video_transcript", videoID)
	if payload, ok := c.cache.Get(ctx, key); ok {
		var lines []string
		if err := json.Unmarshal(payload, &lines); err == nil {
			return lines
		}
	}

	lang, found := c.captionTrackLanguage(ctx, videoID)
	if !found {
		// No captions is the common case; remember it so repeat runs
		// skip the lookup.
		c.cache.Set(ctx, key, []byte("[]"), c.cfg.EnrichmentTTL)
		return nil
	}

	lines := c.fetchCaptionLines(ctx, videoID, lang)
	if payload, err := json.Marshal(lines); err == nil {
		c.cache.Set(ctx, key, payload, c.cfg.EnrichmentTTL)
	}
	return lines
}

// captionTrackLanguage lists the video's caption tracks and picks one,
// preferring English. The second return is false when no track exists or
// the listing failed.
func (c *Client) captionTrackLanguage(ctx context.Context, videoID string) (string, bool) {
	if c.cfg.APIKey == "" {
		return "", false
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", videoID)
	q.Set("key", c.cfg.APIKey)

	resp, err := c.http.Get(ctx, c.cfg.APIBaseURL+"/captions?"+q.Encode(), nil)
	if err != nil || !resp.OK() {
		return "", false
	}

	var parsed captionsResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || len(parsed.Items) == 0 {
		return "", false
	}

	for _, item := range parsed.Items {
		if strings.HasPrefix(item.Snippet.Language, "en") {
			return item.Snippet.Language, true
		}
	}
	return parsed.Items[0].Snippet.Language, true
}

func (c *Client) fetchCaptionLines(ctx context.Context, videoID, lang string) []string {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)
	q.Set("fmt", "json3")

	resp, err := c.http.Get(ctx, c.cfg.CaptionsURL+"?"+q.Encode(), nil)
	if err != nil || !resp.OK() {
		c.logger.Debug("caption fetch failed", "video_id", videoID, "lang", lang, "error", err)
		return nil
	}

	var parsed timedtextResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil
	}

	var lines []string
	for _, event := range parsed.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		line := strings.TrimSpace(text.String())
		if line == "" {
			continue
		}
		lines = append(lines, html.EscapeString(line))
	}
	return lines
}
