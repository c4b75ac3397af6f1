package domain

import "time"

// Meta keys stamped on content records. MetaKeyVideoID is the idempotency
// key; MetaKeyLegacyVideoID is checked during lookup so records created by
// older imports migrate to the primary key on their next update.
const (
	MetaKeyVideoID       = "external_video_id"
	MetaKeyLegacyVideoID = "yt_video_id"
)

// Content record statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
)

// RemoteVideo is one video's metadata as returned by the uploads feed.
type RemoteVideo struct {
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
	ChannelTitle string
	PublishedAt  time.Time
}

// ContentRecord is the locally persisted record materialized for one video.
type ContentRecord struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Slug       string    `db:"slug"`
	Body       string    `db:"body"`
	Status     string    `db:"status"`
	CategoryID int64     `db:"category_id"`
	VideoID    string    `db:"-"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ValidStatus reports whether s is a recognized record status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished:
		return true
	}
	return false
}
