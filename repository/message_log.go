package repository

import (
	"context"
	"time"
)

// MessageLog records which (recipient, category) messages went out recently so
// one-off notices survive event replays and process restarts.
type MessageLog interface {
	// Seen reports whether a message of this category was already sent to the
	// phone number within the log's retention window.
	Seen(ctx context.Context, phoneNumber, category string) (bool, error)
	Mark(ctx context.Context, phoneNumber, category string, ttl time.Duration) error
}
