package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
	"github.com/nestor-churin/AlcoMeterBot/internal/ui"
)

type Sender interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
}

type PauseChecker interface {
	IsPaused(adminID int64) bool
}

// Service delivers moderation traffic. Admin fan-out is paced by a shared
// token bucket and never stops at a failing recipient.
type Service struct {
	sender   Sender
	admins   []int64
	pauses   PauseChecker
	renderer *ui.Renderer
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewService(sender Sender, admins []int64, pauses PauseChecker, renderer *ui.Renderer, limiter *rate.Limiter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Service{
		sender:   sender,
		admins:   append([]int64(nil), admins...),
		pauses:   pauses,
		renderer: renderer,
		limiter:  limiter,
		logger:   logger,
	}
}

// NotifySubmission sends the evidence and a decision card to every admin
// who has not paused notifications.
func (s *Service) NotifySubmission(ctx context.Context, rec model.Submission) []model.DeliveryResult {
	return s.fanOut(ctx, true, func(adminID int64) error {
		return s.SendSubmissionCard(adminID, rec, s.renderer.SubmissionCard(rec))
	})
}

// NotifySuggestion goes to every admin; the pause toggle covers the
// submission queue only.
func (s *Service) NotifySuggestion(ctx context.Context, sg model.Suggestion) []model.DeliveryResult {
	return s.fanOut(ctx, false, func(adminID int64) error {
		msg := tgbotapi.NewMessage(adminID, ui.SuggestionCard(sg))
		msg.ReplyMarkup = ui.SuggestionDecisionKeyboard(sg)
		_, err := s.sender.Send(msg)
		return err
	})
}

// SendSubmissionCard sends the video note followed by text with decision
// buttons. The card is still sent when the video note fails.
func (s *Service) SendSubmissionCard(chatID int64, rec model.Submission, text string) error {
	var videoErr error
	if rec.EvidenceRef != "" {
		note := tgbotapi.NewVideoNote(chatID, 0, tgbotapi.FileID(rec.EvidenceRef))
		if _, err := s.sender.Send(note); err != nil {
			videoErr = fmt.Errorf("send video note: %w", err)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = ui.SubmissionDecisionKeyboard(rec)
	if _, err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("send card: %w", err)
	}
	return videoErr
}

// NotifyUser sends a plain text to a user. Failures wrap ErrDeliveryFailure.
func (s *Service) NotifyUser(ctx context.Context, userID int64, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDeliveryFailure, err)
	}
	if _, err := s.sender.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		metrics.Get().DeliveriesTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("notify user", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("%w: user %d: %v", errs.ErrDeliveryFailure, userID, err)
	}
	metrics.Get().DeliveriesTotal.WithLabelValues("delivered").Inc()
	return nil
}

func (s *Service) fanOut(ctx context.Context, respectPause bool, deliver func(adminID int64) error) []model.DeliveryResult {
	results := make([]model.DeliveryResult, 0, len(s.admins))
	m := metrics.Get()

	for _, adminID := range s.admins {
		if respectPause && s.pauses != nil && s.pauses.IsPaused(adminID) {
			results = append(results, model.DeliveryResult{RecipientID: adminID, Skipped: true})
			m.DeliveriesTotal.WithLabelValues("skipped").Inc()
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			results = append(results, model.DeliveryResult{
				RecipientID: adminID,
				Err:         fmt.Errorf("%w: admin %d: %v", errs.ErrDeliveryFailure, adminID, err),
			})
			m.DeliveriesTotal.WithLabelValues("failed").Inc()
			continue
		}

		if err := deliver(adminID); err != nil {
			s.logger.Warn("admin notification failed", zap.Error(err), zap.Int64("admin_id", adminID))
			results = append(results, model.DeliveryResult{
				RecipientID: adminID,
				Err:         fmt.Errorf("%w: admin %d: %v", errs.ErrDeliveryFailure, adminID, err),
			})
			m.DeliveriesTotal.WithLabelValues("failed").Inc()
			continue
		}

		results = append(results, model.DeliveryResult{RecipientID: adminID})
		m.DeliveriesTotal.WithLabelValues("delivered").Inc()
	}
	return results
}
