package ports

import (
	"context"
	"time"
)

// Entry is one set-with-expiry destined for a pipelined batch write.
type Entry struct {
	Key   string
	Value string
	TTL   time.Duration
}

// CodeStore is the TTL key-value store holding image challenge answers, SMS
// codes, and send-rate flags. It is the only cross-request coordination point
// in the verification protocol.
type CodeStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get reports absence through the second return, not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// PutPipeline applies all entries in a single round trip so a racing
	// reader never observes one written without the others.
	PutPipeline(ctx context.Context, entries ...Entry) error
}
