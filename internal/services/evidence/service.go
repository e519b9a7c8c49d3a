package evidence

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
)

const (
	contentType = "video/mp4"
	linkTTL     = 15 * time.Minute
)

type Downloader interface {
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, int64, error)
}

type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type KeyRecorder interface {
	SetEvidenceKey(ctx context.Context, id int64, key string) error
}

// Service copies video notes out of Telegram so they outlive the file id.
type Service struct {
	downloader Downloader
	store      ObjectStore
	recorder   KeyRecorder
	logger     *zap.Logger
	nowFn      func() time.Time
	newID      func() string
}

func NewService(downloader Downloader, store ObjectStore, recorder KeyRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		downloader: downloader,
		store:      store,
		recorder:   recorder,
		logger:     logger,
		nowFn:      time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Archive uploads the submission's video note and records the object key.
func (s *Service) Archive(ctx context.Context, rec model.Submission) (string, error) {
	key, err := s.archive(ctx, rec)
	if err != nil {
		metrics.Get().ArchiveFailures.Inc()
		s.logger.Warn("archive evidence", zap.Error(err), zap.Int64("submission_id", rec.ID))
		return "", err
	}
	s.logger.Debug("evidence archived", zap.Int64("submission_id", rec.ID), zap.String("key", key))
	return key, nil
}

func (s *Service) archive(ctx context.Context, rec model.Submission) (string, error) {
	if rec.ID <= 0 || rec.EvidenceRef == "" {
		return "", fmt.Errorf("submission %d has no evidence to archive", rec.ID)
	}

	body, size, err := s.downloader.DownloadFile(ctx, rec.EvidenceRef)
	if err != nil {
		return "", err
	}
	defer body.Close()

	key := ObjectKey(rec, s.nowFn(), s.newID())
	if err := s.store.Put(ctx, key, body, size, contentType); err != nil {
		return "", err
	}
	if err := s.recorder.SetEvidenceKey(ctx, rec.ID, key); err != nil {
		return "", fmt.Errorf("record evidence key: %w", err)
	}
	return key, nil
}

// Link returns a short-lived download URL for an archived object.
func (s *Service) Link(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return s.store.PresignGet(ctx, key, linkTTL)
}

// ObjectKey lays objects out by UTC date then user.
func ObjectKey(rec model.Submission, now time.Time, id string) string {
	return fmt.Sprintf("evidence/%s/%d/%d-%s.mp4", now.UTC().Format("2006/01/02"), rec.UserID, rec.ID, id)
}
