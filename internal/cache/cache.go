// Package cache provides the transient store used by the resolver, fetcher
// and enrichment stages. Entries expire after a TTL; misses fall through to
// the network. Concurrent writers follow last-write-wins semantics.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Cache is the injected transient-store collaborator.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

// Key builds a deterministic cache key from parts.
func Key(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("vs:%x", hash[:12])
}
