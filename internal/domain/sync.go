package domain

import "time"

// ImportStats holds the aggregate result of one import run.
type ImportStats struct {
	ChannelID string
	Fetched   int
	Created   int
	Updated   int
	Skipped   int
	Errors    []string
	Duration  time.Duration
}
