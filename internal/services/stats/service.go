package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

const (
	HistoryLimit    = 10
	DefaultTopLimit = 10
	MaxTopLimit     = 50
)

type PeriodBounds struct {
	DayStart   time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

type Repo interface {
	UserTotals(context.Context, int64) (model.UserStats, error)
	CategoryStats(context.Context, int64) ([]model.CategoryStat, error)
	PeriodVolumes(ctx context.Context, userID int64, dayStart, weekStart, monthStart time.Time) (model.PeriodVolumes, error)
	History(context.Context, int64, int) ([]model.Submission, error)
	Leaderboard(context.Context, int) ([]model.LeaderboardEntry, error)
}

type Service struct {
	repo  Repo
	nowFn func() time.Time
	loc   *time.Location
}

func NewService(repo Repo, loc *time.Location) *Service {
	return newService(repo, time.Now, loc)
}

func newService(repo Repo, nowFn func() time.Time, loc *time.Location) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:  repo,
		nowFn: nowFn,
		loc:   loc,
	}
}

// Personal gathers totals, per-category volumes and this day/week/month
// volumes for one user.
func (s *Service) Personal(ctx context.Context, userID int64) (model.UserStats, error) {
	stats, err := s.repo.UserTotals(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}

	bounds := computePeriodBounds(s.nowFn(), s.loc)
	stats.Periods, err = s.repo.PeriodVolumes(ctx, userID, bounds.DayStart, bounds.WeekStart, bounds.MonthStart)
	if err != nil {
		return model.UserStats{}, err
	}

	stats.ByCategory, err = s.repo.CategoryStats(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}
	return stats, nil
}

func (s *Service) History(ctx context.Context, userID int64) ([]model.Submission, error) {
	return s.repo.History(ctx, userID, HistoryLimit)
}

func (s *Service) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	return s.repo.Leaderboard(ctx, clampTop(limit))
}

// ParseTopLimit reads the optional /top argument. Empty means the default;
// values above the maximum are clamped.
func ParseTopLimit(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return DefaultTopLimit, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, errs.Invalid("top size %q", arg)
	}
	return clampTop(n), nil
}

func clampTop(n int) int {
	switch {
	case n <= 0:
		return DefaultTopLimit
	case n > MaxTopLimit:
		return MaxTopLimit
	default:
		return n
	}
}

// computePeriodBounds uses Monday as the first day of the week.
func computePeriodBounds(now time.Time, loc *time.Location) PeriodBounds {
	localNow := now.In(loc)
	year, month, day := localNow.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)

	weekday := int(dayStart.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := dayStart.AddDate(0, 0, -(weekday - 1))
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	return PeriodBounds{
		DayStart:   dayStart,
		WeekStart:  weekStart,
		MonthStart: monthStart,
	}
}

func (b PeriodBounds) String() string {
	return fmt.Sprintf("day=%s week=%s month=%s",
		b.DayStart.Format(time.RFC3339), b.WeekStart.Format(time.RFC3339), b.MonthStart.Format(time.RFC3339))
}
