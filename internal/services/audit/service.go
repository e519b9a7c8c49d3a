package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

type Repo interface {
	Save(context.Context, model.Audit) error
	ListRecent(context.Context, int) ([]model.Audit, error)
}

type Service struct {
	repo  Repo
	nowFn func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, nowFn: time.Now}
}

func (s *Service) LogSubmissionApprove(ctx context.Context, actorID int64, rec model.Submission) error {
	return s.logWithPayload(ctx, enums.AuditActionSubmissionApprove, actorID, map[string]interface{}{
		"submission_id": rec.ID,
		"user_id":       rec.UserID,
		"volume_ml":     rec.VolumeML,
	})
}

func (s *Service) LogSubmissionReject(ctx context.Context, actorID int64, rec model.Submission, rejectedCount int) error {
	return s.logWithPayload(ctx, enums.AuditActionSubmissionReject, actorID, map[string]interface{}{
		"submission_id":  rec.ID,
		"user_id":        rec.UserID,
		"volume_ml":      rec.VolumeML,
		"rejected_count": rejectedCount,
	})
}

func (s *Service) LogSuspension(ctx context.Context, actorID int64, suspension model.Suspension) error {
	return s.logWithPayload(ctx, enums.AuditActionSuspensionIssued, actorID, map[string]interface{}{
		"user_id":        suspension.UserID,
		"duration_hours": suspension.DurationHours,
		"active_until":   suspension.ActiveUntil.UTC().Format(time.RFC3339),
	})
}

func (s *Service) LogSuggestionDecision(ctx context.Context, actorID int64, sg model.Suggestion) error {
	action := enums.AuditActionSuggestionReject
	if sg.Status == enums.StatusApproved {
		action = enums.AuditActionSuggestionApprove
	}
	return s.logWithPayload(ctx, action, actorID, map[string]interface{}{
		"suggestion_id": sg.ID,
		"user_id":       sg.UserID,
		"name":          sg.Name,
	})
}

func (s *Service) LogPauseToggle(ctx context.Context, actorID int64, paused bool) error {
	action := enums.AuditActionQueueResumed
	if paused {
		action = enums.AuditActionQueuePaused
	}
	return s.logWithPayload(ctx, action, actorID, map[string]interface{}{})
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]model.Audit, error) {
	if s.repo == nil {
		return []model.Audit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *Service) logWithPayload(ctx context.Context, action enums.AuditAction, actorID int64, data map[string]interface{}) error {
	if s == nil || s.repo == nil {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		payload = json.RawMessage(`{}`)
	}

	entry := model.Audit{
		ActorID:   actorID,
		Action:    action,
		Payload:   payload,
		CreatedAt: s.nowFn().UTC(),
	}
	return s.repo.Save(ctx, entry)
}
