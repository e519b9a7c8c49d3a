package moderation

import (
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

const (
	// BanThreshold is the rejected-record count from which every further
	// rejection issues a suspension.
	BanThreshold = 3

	minBan = 72 * time.Hour
	maxBan = 720 * time.Hour
)

// NextBanDuration computes the length of the next suspension. history is the
// user's prior suspensions, most recent first.
func NextBanDuration(rejectedCount int, history []model.Suspension) time.Duration {
	if len(history) == 0 {
		return minBan
	}

	last := history[0].Duration()
	if rejectedCount > 2*len(history) {
		return min(last*2, maxBan)
	}
	return max(minBan, last/2)
}
