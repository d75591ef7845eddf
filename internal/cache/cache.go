package cache

import (
	"context"
	"time"
)

// SentMarker is a fast-path record of keys already sent today. The log tables stay authoritative.
type SentMarker interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, at time.Time) error
}

type NoopSentMarker struct{}

func (NoopSentMarker) Seen(context.Context, string) (bool, error) { return false, nil }
func (NoopSentMarker) Mark(context.Context, string, time.Time) error { return nil }
