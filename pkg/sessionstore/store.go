// Package sessionstore keeps verification drafts and capture sessions
// between requests. Entries are JSON encoded and expire after a TTL.
package sessionstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found or expired")

type Store interface {
	// Get decodes the entry stored under key into dst
	Get(ctx context.Context, key string, dst any) error
	// Put stores v under key for ttl, replacing any previous entry
	Put(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key namespaces an id, e.g. Key("draft", id)
func Key(kind, id string) string {
	return kind + ":" + id
}
