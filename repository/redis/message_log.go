package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

type messageLog struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewMessageLog creates a Redis-backed sent-message log. Entries expire after
// ttl so suppression windows are bounded.
func NewMessageLog(client *redislib.Client, ttl time.Duration) repository.MessageLog {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &messageLog{
		client: client,
		prefix: "msglog:",
		ttl:    ttl,
	}
}

func (l *messageLog) Seen(ctx context.Context, phoneNumber, category string) (bool, error) {
	_, err := l.client.Get(ctx, l.key(phoneNumber, category)).Result()
	if err != nil {
		if err == redislib.Nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *messageLog) Mark(ctx context.Context, phoneNumber, category string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = l.ttl
	}
	return l.client.Set(ctx, l.key(phoneNumber, category), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

func (l *messageLog) key(phoneNumber, category string) string {
	return fmt.Sprintf("%s%s:%s", l.prefix, category, phoneNumber)
}
