package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

type stubRepo struct {
	saved []model.Audit
	limit int
}

func (s *stubRepo) Save(_ context.Context, entry model.Audit) error {
	s.saved = append(s.saved, entry)
	return nil
}

func (s *stubRepo) ListRecent(_ context.Context, limit int) ([]model.Audit, error) {
	s.limit = limit
	return s.saved, nil
}

func TestLogSubmissionRejectPayload(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewService(repo)
	svc.nowFn = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }

	rec := model.Submission{ID: 11, UserID: 22, VolumeML: 500}
	if err := svc.LogSubmissionReject(context.Background(), 1, rec, 3); err != nil {
		t.Fatalf("log reject: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.saved))
	}
	entry := repo.saved[0]
	if entry.Action != enums.AuditActionSubmissionReject || entry.ActorID != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	var payload map[string]any
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["rejected_count"] != float64(3) || payload["submission_id"] != float64(11) {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestPauseToggleActions(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_ = svc.LogPauseToggle(ctx, 5, true)
	_ = svc.LogPauseToggle(ctx, 5, false)

	if repo.saved[0].Action != enums.AuditActionQueuePaused || repo.saved[1].Action != enums.AuditActionQueueResumed {
		t.Fatalf("unexpected actions: %s, %s", repo.saved[0].Action, repo.saved[1].Action)
	}

	if _, err := svc.ListRecent(ctx, 0); err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if repo.limit != 50 {
		t.Fatalf("expected default limit 50, got %d", repo.limit)
	}
}

func TestNilRepoIsNoop(t *testing.T) {
	t.Parallel()

	svc := NewService(nil)
	if err := svc.LogSuggestionDecision(context.Background(), 1, model.Suggestion{ID: 1}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
