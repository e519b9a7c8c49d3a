package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/repo/statestore"
)

type failingStore struct{}

func (failingStore) Sweep(context.Context) (int, error) {
	return 0, errors.New("boom")
}

func TestSweepOnceDropsExpiredEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	sessions := statestore.NewMemory[string](time.Minute, clock)
	suggestions := statestore.NewMemory[int](time.Minute, clock)
	_ = sessions.Create(ctx, 1, "a")
	_ = sessions.Create(ctx, 2, "b")
	_ = suggestions.Create(ctx, 3, 1)

	job := New(time.Second, nil)
	job.Attach("sessions", sessions)
	job.Attach("suggestions", suggestions)
	job.Attach("broken", failingStore{})

	if removed := job.SweepOnce(ctx); removed != 0 {
		t.Fatalf("expected nothing expired yet, removed %d", removed)
	}

	now = now.Add(2 * time.Minute)
	if removed := job.SweepOnce(ctx); removed != 3 {
		t.Fatalf("expected 3 expired entries, removed %d", removed)
	}
	if sessions.Len() != 0 || suggestions.Len() != 0 {
		t.Fatal("expected stores to be empty")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	job := New(time.Millisecond, nil)
	job.Attach("sessions", statestore.NewMemory[string](time.Minute, time.Now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
