package suggestion

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/ledger"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/statestore"
)

type stubRepo struct {
	items []model.Suggestion
}

func (r *stubRepo) Insert(_ context.Context, sg model.Suggestion) (model.Suggestion, error) {
	sg.ID = int64(len(r.items) + 1)
	r.items = append(r.items, sg)
	return sg, nil
}

func (r *stubRepo) Resolve(_ context.Context, id int64, status enums.Status, actorID int64, at time.Time) (model.Suggestion, error) {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].Status == enums.StatusPending {
			r.items[i].Status = status
			r.items[i].DecidedBy = actorID
			r.items[i].DecidedAt = &at
			return r.items[i], nil
		}
	}
	return model.Suggestion{}, ledger.ErrSuggestionNotPending
}

type stubNotifier struct {
	sent []model.Suggestion
}

func (n *stubNotifier) NotifySuggestion(_ context.Context, sg model.Suggestion) []model.DeliveryResult {
	n.sent = append(n.sent, sg)
	return []model.DeliveryResult{{RecipientID: 1}}
}

type stubAuditor struct {
	decisions int
}

func (a *stubAuditor) LogSuggestionDecision(context.Context, int64, model.Suggestion) error {
	a.decisions++
	return nil
}

func newTestService() (*Service, *stubRepo, *stubNotifier, *stubAuditor) {
	now := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	repo := &stubRepo{}
	notifier := &stubNotifier{}
	auditor := &stubAuditor{}
	store := statestore.NewMemory[Draft](5*time.Minute, now)
	return newService(store, repo, notifier, auditor, nil, now), repo, notifier, auditor
}

func TestSuggestionFlow(t *testing.T) {
	t.Parallel()

	svc, repo, notifier, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Begin(ctx, 42, "proposer"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if out, err := svc.Submit(ctx, 42, "  Медовуха "); err != nil || out.Next != StepStrength {
		t.Fatalf("name step: out=%+v err=%v", out, err)
	}
	for _, bad := range []string{"abc", "0", "-3", "101", "NaN"} {
		out, err := svc.Submit(ctx, 42, bad)
		if !errors.Is(err, errs.ErrInvalidInput) || out.Next != StepStrength {
			t.Fatalf("strength %q: out=%+v err=%v", bad, out, err)
		}
	}
	if out, err := svc.Submit(ctx, 42, "12,5"); err != nil || out.Next != StepSubtypes {
		t.Fatalf("strength step: out=%+v err=%v", out, err)
	}
	if _, err := svc.Submit(ctx, 42, " , ,"); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty subtypes, got %v", err)
	}

	out, err := svc.Submit(ctx, 42, "класична, ягідна ,  ,пряна")
	if err != nil {
		t.Fatalf("subtypes step: %v", err)
	}
	if !out.Done() {
		t.Fatal("expected flow to complete")
	}

	got := repo.items[0]
	if got.Name != "Медовуха" || got.Strength != 12.5 || got.Status != enums.StatusPending {
		t.Fatalf("unexpected suggestion: %+v", got)
	}
	if want := []string{"класична", "ягідна", "пряна"}; !reflect.DeepEqual(got.Subtypes, want) {
		t.Fatalf("subtypes = %v, want %v", got.Subtypes, want)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one fan-out, got %d", len(notifier.sent))
	}
	if active, _ := svc.Active(ctx, 42); active {
		t.Fatal("expected draft removed after completion")
	}
}

func TestSubmitWithoutDraft(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	if _, err := svc.Submit(context.Background(), 1, "x"); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestBeginRestartsFlow(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Begin(ctx, 3, "u"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := svc.Submit(ctx, 3, "Сидр"); err != nil {
		t.Fatalf("name: %v", err)
	}
	draft, err := svc.Begin(ctx, 3, "u")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if draft.Step != StepName || draft.Name != "" {
		t.Fatalf("expected fresh draft, got %+v", draft)
	}
}

func TestDecideResolvesOnce(t *testing.T) {
	t.Parallel()

	svc, repo, _, auditor := newTestService()
	ctx := context.Background()
	repo.items = []model.Suggestion{{ID: 1, UserID: 42, Name: "Сидр", Status: enums.StatusPending}}

	sg, err := svc.Decide(ctx, 900, 1, true)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if sg.Status != enums.StatusApproved || sg.DecidedBy != 900 {
		t.Fatalf("unexpected suggestion: %+v", sg)
	}
	if _, err := svc.Decide(ctx, 901, 1, false); !errors.Is(err, errs.ErrStaleReference) {
		t.Fatalf("expected ErrStaleReference, got %v", err)
	}
	if auditor.decisions != 1 {
		t.Fatalf("expected one audit entry, got %d", auditor.decisions)
	}
}

func TestParseSubtypesKeepsOrder(t *testing.T) {
	t.Parallel()

	got, err := ParseSubtypes("b, a ,c")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
