package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/statestore"
)

type Store interface {
	Get(context.Context, int64) (Draft, bool, error)
	Create(context.Context, int64, Draft) error
	Put(context.Context, int64, Draft) error
	Delete(context.Context, int64) error
}

type SuspensionChecker interface {
	ActiveSuspension(context.Context, int64) (model.Suspension, bool, error)
}

type SubmissionsRepo interface {
	Insert(context.Context, model.Submission) (model.Submission, error)
}

// Notifier announces a persisted submission to the admins and reports one
// result per admin.
type Notifier interface {
	NotifySubmission(context.Context, model.Submission) []model.DeliveryResult
}

type Service struct {
	store       Store
	catalog     *catalog.Catalog
	suspensions SuspensionChecker
	submissions SubmissionsRepo
	notifier    Notifier
	logger      *zap.Logger
	nowFn       func() time.Time
}

func NewService(store Store, cat *catalog.Catalog, suspensions SuspensionChecker, submissions SubmissionsRepo, notifier Notifier, logger *zap.Logger) *Service {
	return newService(store, cat, suspensions, submissions, notifier, logger, time.Now)
}

func newService(store Store, cat *catalog.Catalog, suspensions SuspensionChecker, submissions SubmissionsRepo, notifier Notifier, logger *zap.Logger, nowFn func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		store:       store,
		catalog:     cat,
		suspensions: suspensions,
		submissions: submissions,
		notifier:    notifier,
		logger:      logger,
		nowFn:       nowFn,
	}
}

type FinalizeResult struct {
	Submission model.Submission
	Deliveries []model.DeliveryResult
}

func (s *Service) Get(ctx context.Context, userID int64) (Draft, bool, error) {
	return s.store.Get(ctx, userID)
}

func (s *Service) Active(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := s.store.Get(ctx, userID)
	return ok, err
}

// AwaitingVolume reports whether the user's next text is a typed volume.
func (s *Service) AwaitingVolume(ctx context.Context, userID int64) (bool, error) {
	draft, ok, err := s.store.Get(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return draft.AwaitingVolume(), nil
}

// Begin opens a draft. It fails with ErrSessionConflict while another draft
// is live and with a *errs.SuspendedError during an active suspension.
func (s *Service) Begin(ctx context.Context, userID int64, username string) (Draft, error) {
	if _, ok, err := s.store.Get(ctx, userID); err != nil {
		return Draft{}, fmt.Errorf("load session: %w", err)
	} else if ok {
		return Draft{}, errs.ErrSessionConflict
	}

	if s.suspensions != nil {
		suspension, active, err := s.suspensions.ActiveSuspension(ctx, userID)
		if err != nil {
			return Draft{}, fmt.Errorf("check suspension: %w", err)
		}
		if active {
			return Draft{}, &errs.SuspendedError{Until: suspension.ActiveUntil}
		}
	}

	draft := newDraft(userID, username, s.nowFn())
	if err := s.store.Create(ctx, userID, draft); err != nil {
		if errors.Is(err, statestore.ErrExists) {
			return Draft{}, errs.ErrSessionConflict
		}
		return Draft{}, fmt.Errorf("create session: %w", err)
	}
	return draft, nil
}

func (s *Service) AttachEvidence(ctx context.Context, userID int64, ref string) (Draft, error) {
	draft, err := s.load(ctx, userID)
	if err != nil {
		return Draft{}, err
	}
	next, err := draft.withEvidence(strings.TrimSpace(ref))
	if err != nil {
		return Draft{}, err
	}
	return next, s.save(ctx, userID, next)
}

// RejectMedia reports whether non-evidence media from the user should be
// answered with a refusal. The draft is left untouched.
func (s *Service) RejectMedia(ctx context.Context, userID int64) (bool, error) {
	draft, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	return ok && draft.AwaitingEvidence(), nil
}

func (s *Service) ChooseCategory(ctx context.Context, userID int64, categoryID string) (Draft, catalog.Category, error) {
	draft, err := s.load(ctx, userID)
	if err != nil {
		return Draft{}, catalog.Category{}, err
	}
	cat, ok := s.catalog.Lookup(categoryID)
	if !ok {
		return Draft{}, catalog.Category{}, errs.Invalid("unknown category %q", categoryID)
	}
	next, err := draft.withCategory(cat)
	if err != nil {
		return Draft{}, catalog.Category{}, err
	}
	return next, cat, s.save(ctx, userID, next)
}

// ChooseSubtype takes the subtype by its position in the category list.
func (s *Service) ChooseSubtype(ctx context.Context, userID int64, categoryID string, subtypeIdx int) (Draft, catalog.Category, error) {
	draft, err := s.load(ctx, userID)
	if err != nil {
		return Draft{}, catalog.Category{}, err
	}
	cat, ok := s.catalog.Lookup(categoryID)
	if !ok {
		return Draft{}, catalog.Category{}, errs.Invalid("unknown category %q", categoryID)
	}
	subtype, ok := cat.Subtype(subtypeIdx)
	if !ok {
		return Draft{}, catalog.Category{}, errs.Invalid("subtype %d out of range for %q", subtypeIdx, categoryID)
	}
	next, err := draft.withSubtype(cat, subtype)
	if err != nil {
		return Draft{}, catalog.Category{}, err
	}
	return next, cat, s.save(ctx, userID, next)
}

// VolumeChoice is either a preset volume or a request to type one.
type VolumeChoice struct {
	Custom   bool
	VolumeML int
}

// ChooseVolume finalizes on a preset; on Custom it switches the draft to
// free-text entry and returns a nil result.
func (s *Service) ChooseVolume(ctx context.Context, userID int64, choice VolumeChoice) (*FinalizeResult, Draft, error) {
	draft, err := s.load(ctx, userID)
	if err != nil {
		return nil, Draft{}, err
	}

	if choice.Custom {
		next, err := draft.withCustomVolume()
		if err != nil {
			return nil, Draft{}, err
		}
		return nil, next, s.save(ctx, userID, next)
	}

	if draft.Step != StepAwaitingVolume {
		return nil, Draft{}, fmt.Errorf("%w: preset volume at %s", errs.ErrWrongStep, draft.Step)
	}
	cat, ok := s.catalog.Lookup(draft.Category)
	if !ok {
		return nil, Draft{}, errs.Invalid("unknown category %q", draft.Category)
	}
	if !cat.IsPreset(choice.VolumeML) {
		return nil, Draft{}, errs.Invalid("volume %d is not a preset of %q", choice.VolumeML, cat.ID)
	}

	result, err := s.finalize(ctx, draft, choice.VolumeML)
	if err != nil {
		return nil, Draft{}, err
	}
	return &result, draft, nil
}

// SubmitVolume reads a typed volume. Bad input leaves the draft as it was.
func (s *Service) SubmitVolume(ctx context.Context, userID int64, text string) (FinalizeResult, error) {
	draft, err := s.load(ctx, userID)
	if err != nil {
		return FinalizeResult{}, err
	}
	if !draft.AwaitingVolume() {
		return FinalizeResult{}, fmt.Errorf("%w: typed volume at %s", errs.ErrWrongStep, draft.Step)
	}

	volume, err := ParseVolume(text)
	if err != nil {
		return FinalizeResult{}, err
	}
	return s.finalize(ctx, draft, volume)
}

// Cancel drops the user's draft and reports whether one existed.
func (s *Service) Cancel(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return true, nil
}

// ParseVolume accepts a positive whole number of millilitres.
func ParseVolume(text string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errs.Invalid("volume %q is not a whole number", text)
	}
	if value <= 0 {
		return 0, errs.Invalid("volume must be positive, got %d", value)
	}
	return value, nil
}

func (s *Service) finalize(ctx context.Context, draft Draft, volumeML int) (FinalizeResult, error) {
	if s.submissions == nil {
		return FinalizeResult{}, fmt.Errorf("submissions repo is not configured")
	}

	rec, err := draft.submission(volumeML, s.nowFn())
	if err != nil {
		return FinalizeResult{}, err
	}
	rec, err = s.submissions.Insert(ctx, rec)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("persist submission: %w", err)
	}
	metrics.Get().SubmissionsTotal.Inc()

	result := FinalizeResult{Submission: rec}
	if s.notifier != nil {
		result.Deliveries = s.notifier.NotifySubmission(ctx, rec)
	}

	if err := s.store.Delete(ctx, draft.UserID); err != nil {
		s.logger.Warn("delete finished session", zap.Error(err), zap.Int64("user_id", draft.UserID))
	}

	s.logger.Info("submission queued",
		zap.Int64("submission_id", rec.ID),
		zap.Int64("user_id", rec.UserID),
		zap.Int("volume_ml", rec.VolumeML),
		zap.Int("admins_notified", model.CountDelivered(result.Deliveries)),
	)
	return result, nil
}

func (s *Service) load(ctx context.Context, userID int64) (Draft, error) {
	draft, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return Draft{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return Draft{}, errs.ErrNoSession
	}
	return draft, nil
}

func (s *Service) save(ctx context.Context, userID int64, draft Draft) error {
	if err := s.store.Put(ctx, userID, draft); err != nil {
		if errors.Is(err, statestore.ErrNotFound) {
			return errs.ErrNoSession
		}
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
