package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
)

type Sweepable interface {
	Sweep(context.Context) (int, error)
}

// Job drops expired conversation state from stores that do not expire
// entries on their own.
type Job struct {
	stores   map[string]Sweepable
	interval time.Duration
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		stores:   make(map[string]Sweepable),
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) Attach(name string, store Sweepable) {
	if store != nil {
		j.stores[name] = store
	}
}

// Run sweeps once per interval until ctx is done.
func (j *Job) Run(ctx context.Context) error {
	if len(j.stores) == 0 {
		return nil
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.SweepOnce(ctx)
		}
	}
}

// SweepOnce reports the total number of dropped entries. A failing store is
// logged and skipped.
func (j *Job) SweepOnce(ctx context.Context) int {
	total := 0
	for name, store := range j.stores {
		removed, err := store.Sweep(ctx)
		if err != nil {
			j.logger.Warn("sweep state store", zap.Error(err), zap.String("store", name))
			continue
		}
		if removed > 0 {
			metrics.Get().SessionsExpired.Add(float64(removed))
			j.logger.Debug("expired state dropped", zap.String("store", name), zap.Int("removed", removed))
		}
		total += removed
	}
	return total
}
