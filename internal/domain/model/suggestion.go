package model

import (
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
)

type Suggestion struct {
	ID        int64
	UserID    int64
	Username  string
	Name      string
	Strength  float64
	Subtypes  []string
	Status    enums.Status
	CreatedAt time.Time
	DecidedAt *time.Time
	DecidedBy int64
}
