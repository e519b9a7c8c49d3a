package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/moderation"
	"github.com/nestor-churin/AlcoMeterBot/internal/ui"
)

type recordingSender struct {
	mu     sync.Mutex
	failTo map[int64]bool
	sent   []tgbotapi.Chattable
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chatID int64
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		chatID = msg.ChatID
	case tgbotapi.VideoNoteConfig:
		chatID = msg.ChatID
	}
	if s.failTo[chatID] {
		return tgbotapi.Message{}, errors.New("forbidden: bot was blocked by the user")
	}
	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func (s *recordingSender) countTo(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.sent {
		switch msg := c.(type) {
		case tgbotapi.MessageConfig:
			if msg.ChatID == chatID {
				n++
			}
		case tgbotapi.VideoNoteConfig:
			if msg.ChatID == chatID {
				n++
			}
		}
	}
	return n
}

func testRenderer() *ui.Renderer {
	cat := catalog.MustNew(catalog.Category{ID: "beer", Name: "Пиво", Strength: 5, Subtypes: []string{"lager"}, DefaultVolume: 500})
	return ui.NewRenderer(cat, time.UTC)
}

func testSubmission() model.Submission {
	return model.Submission{ID: 1, UserID: 5, Username: "drinker", Category: "beer", Subtype: "lager", VolumeML: 500, Strength: 5, EvidenceRef: "note-1"}
}

func TestNotifySubmissionSkipsPausedAndContinuesPastFailures(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{failTo: map[int64]bool{200: true}}
	pauses := moderation.NewPauses()
	pauses.Toggle(300)

	svc := NewService(sender, []int64{100, 200, 300, 400}, pauses, testRenderer(), nil, nil)
	results := svc.NotifySubmission(context.Background(), testSubmission())

	if len(results) != 4 {
		t.Fatalf("expected one result per admin, got %d", len(results))
	}
	byID := map[int64]model.DeliveryResult{}
	for _, r := range results {
		byID[r.RecipientID] = r
	}
	if !byID[100].Delivered() || !byID[400].Delivered() {
		t.Fatalf("expected 100 and 400 delivered: %+v", results)
	}
	if !errors.Is(byID[200].Err, errs.ErrDeliveryFailure) {
		t.Fatalf("expected delivery failure for 200, got %v", byID[200].Err)
	}
	if !byID[300].Skipped || sender.countTo(300) != 0 {
		t.Fatalf("expected paused admin skipped, got %+v", byID[300])
	}
	if sender.countTo(100) != 2 {
		t.Fatalf("expected video note and card for 100, got %d messages", sender.countTo(100))
	}
	if model.CountDelivered(results) != 2 {
		t.Fatalf("expected 2 delivered, got %d", model.CountDelivered(results))
	}
}

func TestNotifySuggestionIgnoresPause(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	pauses := moderation.NewPauses()
	pauses.Toggle(100)

	svc := NewService(sender, []int64{100, 200}, pauses, testRenderer(), nil, nil)
	results := svc.NotifySuggestion(context.Background(), model.Suggestion{ID: 3, UserID: 5, Name: "Сидр", Strength: 6, Subtypes: []string{"яблучний"}})

	if model.CountDelivered(results) != 2 {
		t.Fatalf("expected both admins notified, got %+v", results)
	}
}

func TestFanOutStopsPacingOnCancelledContext(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(sender, []int64{100}, nil, testRenderer(), nil, nil)
	svc.limiter.SetLimit(0.001)
	svc.limiter.SetBurst(0)

	results := svc.NotifySubmission(ctx, testSubmission())
	if len(results) != 1 || !errors.Is(results[0].Err, errs.ErrDeliveryFailure) {
		t.Fatalf("expected delivery failure on cancelled context, got %+v", results)
	}
	if sender.countTo(100) != 0 {
		t.Fatal("expected nothing sent")
	}
}

func TestNotifyUserWrapsFailure(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{failTo: map[int64]bool{9: true}}
	svc := NewService(sender, nil, nil, testRenderer(), nil, nil)

	if err := svc.NotifyUser(context.Background(), 9, "hi"); !errors.Is(err, errs.ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
	if err := svc.NotifyUser(context.Background(), 10, "hi"); err != nil {
		t.Fatalf("notify: %v", err)
	}
}
