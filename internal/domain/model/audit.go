package model

import (
	"encoding/json"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
)

type Audit struct {
	ID        int64
	ActorID   int64
	Action    enums.AuditAction
	Payload   json.RawMessage
	CreatedAt time.Time
}
