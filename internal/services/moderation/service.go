package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/ledger"
)

type SubmissionsRepo interface {
	ResolvePending(context.Context, int64, int, enums.Status, int64, time.Time) (model.Submission, error)
	CountByStatus(context.Context, int64, enums.Status) (int, error)
	ListByStatus(context.Context, enums.Status, int) ([]model.Submission, error)
}

type SuspensionsRepo interface {
	Insert(context.Context, model.Suspension) (model.Suspension, error)
	Active(context.Context, int64, time.Time) (model.Suspension, bool, error)
	ListByUser(context.Context, int64) ([]model.Suspension, error)
}

type Auditor interface {
	LogSubmissionApprove(context.Context, int64, model.Submission) error
	LogSubmissionReject(context.Context, int64, model.Submission, int) error
	LogSuspension(context.Context, int64, model.Suspension) error
	LogPauseToggle(context.Context, int64, bool) error
}

type Service struct {
	submissions SubmissionsRepo
	suspensions SuspensionsRepo
	auditor     Auditor
	pauses      *Pauses
	logger      *zap.Logger
	nowFn       func() time.Time
}

func NewService(submissions SubmissionsRepo, suspensions SuspensionsRepo, auditor Auditor, logger *zap.Logger) *Service {
	return newService(submissions, suspensions, auditor, logger, time.Now)
}

func newService(submissions SubmissionsRepo, suspensions SuspensionsRepo, auditor Auditor, logger *zap.Logger, nowFn func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		submissions: submissions,
		suspensions: suspensions,
		auditor:     auditor,
		pauses:      NewPauses(),
		logger:      logger,
		nowFn:       nowFn,
	}
}

func (s *Service) Pauses() *Pauses {
	return s.pauses
}

// TogglePause mutes or unmutes submission notifications for an admin.
func (s *Service) TogglePause(ctx context.Context, adminID int64) bool {
	paused := s.pauses.Toggle(adminID)
	if s.auditor != nil {
		if err := s.auditor.LogPauseToggle(ctx, adminID, paused); err != nil {
			s.logger.Warn("audit pause toggle", zap.Error(err), zap.Int64("admin_id", adminID))
		}
	}
	return paused
}

// ActiveSuspension reports the latest suspension still running now.
func (s *Service) ActiveSuspension(ctx context.Context, userID int64) (model.Suspension, bool, error) {
	if s.suspensions == nil {
		return model.Suspension{}, false, nil
	}
	return s.suspensions.Active(ctx, userID, s.nowFn())
}

func (s *Service) PendingQueue(ctx context.Context, limit int) ([]model.Submission, error) {
	if s.submissions == nil {
		return []model.Submission{}, nil
	}
	return s.submissions.ListByStatus(ctx, enums.StatusPending, limit)
}

type DecisionInput struct {
	ActorID  int64
	UserID   int64
	VolumeML int
}

type ApproveResult struct {
	Submission model.Submission
}

func (s *Service) Approve(ctx context.Context, input DecisionInput) (ApproveResult, error) {
	rec, err := s.resolve(ctx, input, enums.StatusApproved)
	if err != nil {
		return ApproveResult{}, err
	}

	metrics.Get().DecisionsTotal.WithLabelValues("submission", "approve").Inc()
	if s.auditor != nil {
		if err := s.auditor.LogSubmissionApprove(ctx, input.ActorID, rec); err != nil {
			s.logger.Warn("audit approve", zap.Error(err), zap.Int64("submission_id", rec.ID))
		}
	}

	return ApproveResult{Submission: rec}, nil
}

type RejectResult struct {
	Submission    model.Submission
	RejectedCount int
	// Suspension is set when the rejection crossed BanThreshold.
	Suspension *model.Suspension
}

func (s *Service) Reject(ctx context.Context, input DecisionInput) (RejectResult, error) {
	rec, err := s.resolve(ctx, input, enums.StatusRejected)
	if err != nil {
		return RejectResult{}, err
	}
	metrics.Get().DecisionsTotal.WithLabelValues("submission", "reject").Inc()

	result := RejectResult{Submission: rec}

	result.RejectedCount, err = s.submissions.CountByStatus(ctx, rec.UserID, enums.StatusRejected)
	if err != nil {
		return result, fmt.Errorf("count rejections: %w", err)
	}

	if s.auditor != nil {
		if err := s.auditor.LogSubmissionReject(ctx, input.ActorID, rec, result.RejectedCount); err != nil {
			s.logger.Warn("audit reject", zap.Error(err), zap.Int64("submission_id", rec.ID))
		}
	}

	if result.RejectedCount < BanThreshold || s.suspensions == nil {
		return result, nil
	}

	history, err := s.suspensions.ListByUser(ctx, rec.UserID)
	if err != nil {
		return result, fmt.Errorf("list suspensions: %w", err)
	}

	duration := NextBanDuration(result.RejectedCount, history)
	now := s.nowFn().UTC()
	suspension, err := s.suspensions.Insert(ctx, model.Suspension{
		UserID:        rec.UserID,
		Username:      rec.Username,
		Kind:          enums.SuspensionKindRejectionBan,
		DurationHours: int(duration / time.Hour),
		ActiveUntil:   now.Add(duration),
		CreatedAt:     now,
	})
	if err != nil {
		return result, fmt.Errorf("insert suspension: %w", err)
	}
	result.Suspension = &suspension
	metrics.Get().SuspensionsTotal.Inc()

	s.logger.Info("user suspended",
		zap.Int64("user_id", rec.UserID),
		zap.Int("rejected_count", result.RejectedCount),
		zap.Int("duration_hours", suspension.DurationHours),
	)
	if s.auditor != nil {
		if err := s.auditor.LogSuspension(ctx, input.ActorID, suspension); err != nil {
			s.logger.Warn("audit suspension", zap.Error(err), zap.Int64("user_id", rec.UserID))
		}
	}

	return result, nil
}

func (s *Service) resolve(ctx context.Context, input DecisionInput, status enums.Status) (model.Submission, error) {
	if s.submissions == nil {
		return model.Submission{}, fmt.Errorf("moderation repo is not configured")
	}
	if input.UserID == 0 || input.VolumeML <= 0 {
		return model.Submission{}, errs.Invalid("decision target %d/%d", input.UserID, input.VolumeML)
	}

	rec, err := s.submissions.ResolvePending(ctx, input.UserID, input.VolumeML, status, input.ActorID, s.nowFn().UTC())
	if err != nil {
		if errors.Is(err, ledger.ErrSubmissionNotPending) {
			return model.Submission{}, fmt.Errorf("%w: user %d volume %d", errs.ErrStaleReference, input.UserID, input.VolumeML)
		}
		return model.Submission{}, err
	}
	return rec, nil
}
