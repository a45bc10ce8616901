package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

func newTestLog(t *testing.T) (*miniredis.Miniredis, *messageLog) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, NewMessageLog(client, time.Hour).(*messageLog)
}

func TestMessageLogMarkAndSeen(t *testing.T) {
	_, log := newTestLog(t)
	ctx := context.Background()

	seen, err := log.Seen(ctx, "+919800000001", "welcome")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("fresh log must not report a message as seen")
	}

	if err := log.Mark(ctx, "+919800000001", "welcome", time.Hour); err != nil {
		t.Fatal(err)
	}

	seen, err = log.Seen(ctx, "+919800000001", "welcome")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Fatal("marked message must be seen")
	}

	// the same recipient with another category is independent
	seen, err = log.Seen(ctx, "+919800000001", "re_engagement")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("categories must not collide")
	}
}

func TestMessageLogEntriesExpire(t *testing.T) {
	srv, log := newTestLog(t)
	ctx := context.Background()

	if err := log.Mark(ctx, "+919800000002", "re_engagement", time.Minute); err != nil {
		t.Fatal(err)
	}

	srv.FastForward(2 * time.Minute)

	seen, err := log.Seen(ctx, "+919800000002", "re_engagement")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("expired entries must not suppress new sends")
	}
}
