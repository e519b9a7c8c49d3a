package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/statestore"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type stubSuspensions struct {
	active model.Suspension
	found  bool
}

func (s *stubSuspensions) ActiveSuspension(context.Context, int64) (model.Suspension, bool, error) {
	return s.active, s.found, nil
}

type stubSubmissions struct {
	records []model.Submission
	err     error
}

func (s *stubSubmissions) Insert(_ context.Context, rec model.Submission) (model.Submission, error) {
	if s.err != nil {
		return model.Submission{}, s.err
	}
	rec.ID = int64(len(s.records) + 1)
	s.records = append(s.records, rec)
	return rec, nil
}

type stubNotifier struct {
	calls int
}

func (n *stubNotifier) NotifySubmission(_ context.Context, rec model.Submission) []model.DeliveryResult {
	n.calls++
	return []model.DeliveryResult{
		{RecipientID: 100},
		{RecipientID: 200, Err: errs.ErrDeliveryFailure},
	}
}

type fixture struct {
	svc         *Service
	store       *statestore.Memory[Draft]
	clock       *fakeClock
	suspensions *stubSuspensions
	submissions *stubSubmissions
	notifier    *stubNotifier
}

func testCatalog() *catalog.Catalog {
	return catalog.MustNew(
		catalog.Category{ID: "beer", Name: "Пиво", Strength: 5, Subtypes: []string{"lager", "ale", "stout"}, DefaultVolume: 500},
		catalog.Category{ID: "wine", Name: "Вино", Strength: 12, Subtypes: []string{"red", "white"}, DefaultVolume: 150},
	)
}

func newFixture() *fixture {
	clock := &fakeClock{now: time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)}
	f := &fixture{
		store:       statestore.NewMemory[Draft](5*time.Minute, clock.Now),
		clock:       clock,
		suspensions: &stubSuspensions{},
		submissions: &stubSubmissions{},
		notifier:    &stubNotifier{},
	}
	f.svc = newService(f.store, testCatalog(), f.suspensions, f.submissions, f.notifier, nil, clock.Now)
	return f
}

// advanceToVolume walks a fresh draft up to the volume keyboard.
func (f *fixture) advanceToVolume(t *testing.T, userID int64) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.Begin(ctx, userID, "tester"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := f.svc.AttachEvidence(ctx, userID, "video-note-1"); err != nil {
		t.Fatalf("attach evidence: %v", err)
	}
	if _, _, err := f.svc.ChooseCategory(ctx, userID, "beer"); err != nil {
		t.Fatalf("choose category: %v", err)
	}
	if _, _, err := f.svc.ChooseSubtype(ctx, userID, "beer", 0); err != nil {
		t.Fatalf("choose subtype: %v", err)
	}
}

func TestBeginTwiceConflicts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	draft, err := f.svc.Begin(ctx, 1, "u1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !draft.AwaitingEvidence() {
		t.Fatalf("expected awaiting evidence, got %s", draft.Step)
	}
	if _, err := f.svc.Begin(ctx, 1, "u1"); !errors.Is(err, errs.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
}

func TestBeginSuspendedReportsUntilAndCreatesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	until := time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)
	f.suspensions.active = model.Suspension{UserID: 7, ActiveUntil: until}
	f.suspensions.found = true

	_, err := f.svc.Begin(context.Background(), 7, "banned")
	if !errors.Is(err, errs.ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
	var suspended *errs.SuspendedError
	if !errors.As(err, &suspended) || !suspended.Until.Equal(until) {
		t.Fatalf("expected until %s, got %v", until, err)
	}
	if f.store.Len() != 0 {
		t.Fatalf("expected no session state, store has %d", f.store.Len())
	}
}

func TestRoundTripPresetVolume(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.advanceToVolume(t, 3)

	result, _, err := f.svc.ChooseVolume(ctx, 3, VolumeChoice{VolumeML: 500})
	if err != nil {
		t.Fatalf("choose volume: %v", err)
	}
	if result == nil {
		t.Fatal("expected preset volume to finalize")
	}

	rec := result.Submission
	if rec.Status != enums.StatusPending || rec.Category != "beer" || rec.Subtype != "lager" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.VolumeML != 500 || rec.Strength != 5 || rec.EvidenceRef != "video-note-1" {
		t.Fatalf("unexpected record values: %+v", rec)
	}
	if len(f.submissions.records) != 1 || f.notifier.calls != 1 {
		t.Fatalf("expected one insert and one notification, got %d/%d", len(f.submissions.records), f.notifier.calls)
	}
	if got := model.CountDelivered(result.Deliveries); got != 1 {
		t.Fatalf("expected 1 delivered, got %d", got)
	}
	if _, ok, _ := f.svc.Get(ctx, 3); ok {
		t.Fatal("expected session to be removed after finalize")
	}
}

func TestChooseVolumeRejectsNonPreset(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.advanceToVolume(t, 4)

	_, _, err := f.svc.ChooseVolume(context.Background(), 4, VolumeChoice{VolumeML: 330})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(f.submissions.records) != 0 {
		t.Fatal("expected nothing persisted")
	}
}

func TestSubmitVolumeParsing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.advanceToVolume(t, 5)

	if _, draft, err := f.svc.ChooseVolume(ctx, 5, VolumeChoice{Custom: true}); err != nil {
		t.Fatalf("custom volume: %v", err)
	} else if !draft.AwaitingVolume() {
		t.Fatalf("expected awaiting typed volume, got %s", draft.Step)
	}

	for _, input := range []string{"-5", "0", "abc", "", "1.5"} {
		if _, err := f.svc.SubmitVolume(ctx, 5, input); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("input %q: expected ErrInvalidInput, got %v", input, err)
		}
		draft, ok, _ := f.svc.Get(ctx, 5)
		if !ok || !draft.AwaitingVolume() || draft.Subtype != "lager" {
			t.Fatalf("input %q: session should stay intact, got %+v ok=%v", input, draft, ok)
		}
	}

	result, err := f.svc.SubmitVolume(ctx, 5, " 750 ")
	if err != nil {
		t.Fatalf("submit volume: %v", err)
	}
	if result.Submission.VolumeML != 750 {
		t.Fatalf("expected 750, got %d", result.Submission.VolumeML)
	}
	if waiting, _ := f.svc.AwaitingVolume(ctx, 5); waiting {
		t.Fatal("expected no typed volume prompt after finalize")
	}
}

func TestFailedInsertKeepsDraft(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.advanceToVolume(t, 6)
	f.submissions.err = errors.New("disk full")

	if _, _, err := f.svc.ChooseVolume(ctx, 6, VolumeChoice{VolumeML: 1000}); err == nil {
		t.Fatal("expected insert error")
	}
	if active, _ := f.svc.Active(ctx, 6); !active {
		t.Fatal("expected draft to survive a failed insert")
	}
	if f.notifier.calls != 0 {
		t.Fatal("expected no notification on failed insert")
	}
}

func TestStepOrderIsEnforced(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, _, err := f.svc.ChooseCategory(ctx, 8, "beer"); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := f.svc.Begin(ctx, 8, "u8"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, _, err := f.svc.ChooseCategory(ctx, 8, "beer"); !errors.Is(err, errs.ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep before evidence, got %v", err)
	}
	if _, err := f.svc.AttachEvidence(ctx, 8, "note"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := f.svc.AttachEvidence(ctx, 8, "note-2"); !errors.Is(err, errs.ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep on second evidence, got %v", err)
	}
	if _, _, err := f.svc.ChooseCategory(ctx, 8, "absinthe"); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown category, got %v", err)
	}
	if _, _, err := f.svc.ChooseCategory(ctx, 8, "beer"); err != nil {
		t.Fatalf("choose category: %v", err)
	}
	if _, _, err := f.svc.ChooseSubtype(ctx, 8, "beer", 9); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for subtype index, got %v", err)
	}
	if _, _, err := f.svc.ChooseSubtype(ctx, 8, "wine", 0); !errors.Is(err, errs.ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep for foreign category subtype, got %v", err)
	}
}

func TestCategoryCanBeChosenAgain(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.advanceToVolume(t, 9)

	draft, cat, err := f.svc.ChooseCategory(ctx, 9, "wine")
	if err != nil {
		t.Fatalf("re-choose category: %v", err)
	}
	if cat.ID != "wine" || draft.Subtype != "" || draft.Step != StepAwaitingSubtype || draft.Strength != 12 {
		t.Fatalf("unexpected draft after re-choose: %+v", draft)
	}
}

func TestRejectMediaOnlyWhileAwaitingEvidence(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if refuse, _ := f.svc.RejectMedia(ctx, 10); refuse {
		t.Fatal("no session must not refuse media")
	}
	if _, err := f.svc.Begin(ctx, 10, "u10"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if refuse, _ := f.svc.RejectMedia(ctx, 10); !refuse {
		t.Fatal("expected media refusal while awaiting evidence")
	}
	draft, _, _ := f.svc.Get(ctx, 10)
	if !draft.AwaitingEvidence() {
		t.Fatal("refusal must not change the draft")
	}
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Begin(ctx, 11, "u11"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.clock.now = f.clock.now.Add(5 * time.Minute)

	if _, err := f.svc.AttachEvidence(ctx, 11, "late"); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after ttl, got %v", err)
	}
	if _, err := f.svc.Begin(ctx, 11, "u11"); err != nil {
		t.Fatalf("begin after expiry: %v", err)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if ok, err := f.svc.Cancel(ctx, 12); err != nil || ok {
		t.Fatalf("cancel without session: ok=%v err=%v", ok, err)
	}
	if _, err := f.svc.Begin(ctx, 12, "u12"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if ok, err := f.svc.Cancel(ctx, 12); err != nil || !ok {
		t.Fatalf("cancel: ok=%v err=%v", ok, err)
	}
	if _, err := f.svc.Begin(ctx, 12, "u12"); err != nil {
		t.Fatalf("begin after cancel: %v", err)
	}
}
