package suggestion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/ledger"
)

const maxNameLength = 64

type Step string

const (
	StepName     Step = "name"
	StepStrength Step = "strength"
	StepSubtypes Step = "subtypes"
)

type Draft struct {
	Step      Step      `json:"step"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	Strength  float64   `json:"strength,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type Store interface {
	Get(context.Context, int64) (Draft, bool, error)
	Create(context.Context, int64, Draft) error
	Put(context.Context, int64, Draft) error
	Delete(context.Context, int64) error
}

type Repo interface {
	Insert(context.Context, model.Suggestion) (model.Suggestion, error)
	Resolve(ctx context.Context, id int64, status enums.Status, actorID int64, at time.Time) (model.Suggestion, error)
}

type Notifier interface {
	NotifySuggestion(context.Context, model.Suggestion) []model.DeliveryResult
}

type Auditor interface {
	LogSuggestionDecision(ctx context.Context, actorID int64, sg model.Suggestion) error
}

type Service struct {
	store    Store
	repo     Repo
	notifier Notifier
	auditor  Auditor
	logger   *zap.Logger
	nowFn    func() time.Time
}

func NewService(store Store, repo Repo, notifier Notifier, auditor Auditor, logger *zap.Logger) *Service {
	return newService(store, repo, notifier, auditor, logger, time.Now)
}

func newService(store Store, repo Repo, notifier Notifier, auditor Auditor, logger *zap.Logger, nowFn func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		store:    store,
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		nowFn:    nowFn,
	}
}

// Outcome is the state after one Submit. Suggestion is set once the last
// step completes.
type Outcome struct {
	Next       Step
	Suggestion *model.Suggestion
	Deliveries []model.DeliveryResult
}

func (o Outcome) Done() bool { return o.Suggestion != nil }

// Begin starts the flow from the name step, replacing an unfinished one.
func (s *Service) Begin(ctx context.Context, userID int64, username string) (Draft, error) {
	if err := s.store.Delete(ctx, userID); err != nil {
		return Draft{}, fmt.Errorf("reset suggestion: %w", err)
	}
	draft := Draft{
		Step:      StepName,
		UserID:    userID,
		Username:  username,
		StartedAt: s.nowFn().UTC(),
	}
	if err := s.store.Create(ctx, userID, draft); err != nil {
		return Draft{}, fmt.Errorf("create suggestion: %w", err)
	}
	return draft, nil
}

func (s *Service) Active(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := s.store.Get(ctx, userID)
	return ok, err
}

func (s *Service) Cancel(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := s.store.Get(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("delete suggestion: %w", err)
	}
	return true, nil
}

// Submit feeds one text answer into the flow. Invalid answers keep the
// current step.
func (s *Service) Submit(ctx context.Context, userID int64, text string) (Outcome, error) {
	draft, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load suggestion: %w", err)
	}
	if !ok {
		return Outcome{}, errs.ErrNoSession
	}

	switch draft.Step {
	case StepName:
		name, err := ParseName(text)
		if err != nil {
			return Outcome{Next: StepName}, err
		}
		draft.Name = name
		draft.Step = StepStrength
		return Outcome{Next: StepStrength}, s.save(ctx, userID, draft)

	case StepStrength:
		strength, err := ParseStrength(text)
		if err != nil {
			return Outcome{Next: StepStrength}, err
		}
		draft.Strength = strength
		draft.Step = StepSubtypes
		return Outcome{Next: StepSubtypes}, s.save(ctx, userID, draft)

	case StepSubtypes:
		subtypes, err := ParseSubtypes(text)
		if err != nil {
			return Outcome{Next: StepSubtypes}, err
		}
		return s.complete(ctx, draft, subtypes)

	default:
		return Outcome{}, fmt.Errorf("%w: unknown suggestion step %q", errs.ErrWrongStep, draft.Step)
	}
}

// Decide resolves a pending suggestion. A second decision on the same
// suggestion gets ErrStaleReference.
func (s *Service) Decide(ctx context.Context, actorID, suggestionID int64, approve bool) (model.Suggestion, error) {
	if suggestionID <= 0 {
		return model.Suggestion{}, errs.Invalid("suggestion id must be positive")
	}
	status := enums.StatusRejected
	if approve {
		status = enums.StatusApproved
	}

	sg, err := s.repo.Resolve(ctx, suggestionID, status, actorID, s.nowFn())
	if err != nil {
		if errors.Is(err, ledger.ErrSuggestionNotPending) {
			return model.Suggestion{}, errs.ErrStaleReference
		}
		return model.Suggestion{}, fmt.Errorf("resolve suggestion: %w", err)
	}

	metrics.Get().DecisionsTotal.WithLabelValues("suggestion", string(status)).Inc()
	if s.auditor != nil {
		if err := s.auditor.LogSuggestionDecision(ctx, actorID, sg); err != nil {
			s.logger.Warn("audit suggestion decision", zap.Error(err), zap.Int64("suggestion_id", sg.ID))
		}
	}
	return sg, nil
}

func ParseName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", errs.Invalid("name is empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", errs.Invalid("name longer than %d characters", maxNameLength)
	}
	return name, nil
}

// ParseStrength accepts a percentage in (0, 100]; a decimal comma is allowed.
func ParseStrength(text string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.Invalid("strength %q is not a number", text)
	}
	if !(value > 0 && value <= 100) {
		return 0, errs.Invalid("strength %v outside (0, 100]", value)
	}
	return value, nil
}

// ParseSubtypes splits a comma separated list keeping its order.
func ParseSubtypes(text string) ([]string, error) {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, errs.Invalid("no subtypes given")
	}
	return out, nil
}

func (s *Service) complete(ctx context.Context, draft Draft, subtypes []string) (Outcome, error) {
	sg, err := s.repo.Insert(ctx, model.Suggestion{
		UserID:    draft.UserID,
		Username:  draft.Username,
		Name:      draft.Name,
		Strength:  draft.Strength,
		Subtypes:  subtypes,
		Status:    enums.StatusPending,
		CreatedAt: s.nowFn().UTC(),
	})
	if err != nil {
		return Outcome{Next: StepSubtypes}, fmt.Errorf("persist suggestion: %w", err)
	}
	metrics.Get().SuggestionsTotal.Inc()

	out := Outcome{Suggestion: &sg}
	if s.notifier != nil {
		out.Deliveries = s.notifier.NotifySuggestion(ctx, sg)
	}
	if err := s.store.Delete(ctx, draft.UserID); err != nil {
		s.logger.Warn("delete finished suggestion", zap.Error(err), zap.Int64("user_id", draft.UserID))
	}

	s.logger.Info("suggestion received",
		zap.Int64("suggestion_id", sg.ID),
		zap.Int64("user_id", sg.UserID),
		zap.String("name", sg.Name),
	)
	return out, nil
}

func (s *Service) save(ctx context.Context, userID int64, draft Draft) error {
	if err := s.store.Put(ctx, userID, draft); err != nil {
		return fmt.Errorf("save suggestion: %w", err)
	}
	return nil
}
