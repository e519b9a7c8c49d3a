package statestore

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

type draft struct {
	Step     string `json:"step"`
	Evidence string `json:"evidence,omitempty"`
}

func newMiniRedisClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, mr := newMiniRedisClient(t)
	store := NewRedis[draft](client, "alco:session:", 5*time.Minute)

	if err := store.Put(ctx, 5, draft{Step: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Create(ctx, 5, draft{Step: "evidence"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, 5, draft{Step: "evidence"}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if err := store.Put(ctx, 5, draft{Step: "category", Evidence: "file"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.Get(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Step != "category" || got.Evidence != "file" {
		t.Fatalf("unexpected value: %+v", got)
	}
	if ttl := mr.TTL("alco:session:5"); ttl != 5*time.Minute {
		t.Fatalf("expected ttl 5m, got %s", ttl)
	}

	mr.FastForward(5 * time.Minute)
	if _, ok, _ := store.Get(ctx, 5); ok {
		t.Fatal("expected key to expire")
	}

	if err := store.Create(ctx, 6, draft{Step: "evidence"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, 6); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 6); ok {
		t.Fatal("expected deleted key to be absent")
	}
}
