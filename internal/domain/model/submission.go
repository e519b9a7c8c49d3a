package model

import (
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
)

type Submission struct {
	ID          int64
	UserID      int64
	Username    string
	Category    string
	Subtype     string
	VolumeML    int
	Strength    float64
	EvidenceRef string
	EvidenceKey string
	Status      enums.Status
	CreatedAt   time.Time
	DecidedAt   *time.Time
	DecidedBy   int64
}

// PureAlcoholML is the ethanol share of the record in millilitres.
func (s Submission) PureAlcoholML() float64 {
	return float64(s.VolumeML) * s.Strength / 100
}

type Suspension struct {
	ID            int64
	UserID        int64
	Username      string
	Kind          enums.SuspensionKind
	DurationHours int
	ActiveUntil   time.Time
	CreatedAt     time.Time
}

func (s Suspension) Duration() time.Duration {
	return time.Duration(s.DurationHours) * time.Hour
}
