package session

import (
	"fmt"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

type Step string

const (
	StepAwaitingEvidence     Step = "awaiting_evidence"
	StepAwaitingCategory     Step = "awaiting_category"
	StepAwaitingSubtype      Step = "awaiting_subtype"
	StepAwaitingVolume       Step = "awaiting_volume"
	StepAwaitingCustomVolume Step = "awaiting_custom_volume"
)

// Draft is the in-progress submission of one user. Step decides which
// fields are meaningful; drafts are only built through the transition
// methods below, so a later field is never set without the earlier ones.
type Draft struct {
	Step        Step      `json:"step"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	EvidenceRef string    `json:"evidence_ref,omitempty"`
	Category    string    `json:"category,omitempty"`
	Subtype     string    `json:"subtype,omitempty"`
	Strength    float64   `json:"strength,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

func newDraft(userID int64, username string, now time.Time) Draft {
	return Draft{
		Step:      StepAwaitingEvidence,
		UserID:    userID,
		Username:  username,
		StartedAt: now.UTC(),
	}
}

func (d Draft) AwaitingEvidence() bool { return d.Step == StepAwaitingEvidence }

// AwaitingVolume is true while free text is read as the volume.
func (d Draft) AwaitingVolume() bool { return d.Step == StepAwaitingCustomVolume }

func (d Draft) withEvidence(ref string) (Draft, error) {
	if d.Step != StepAwaitingEvidence {
		return Draft{}, fmt.Errorf("%w: evidence at %s", errs.ErrWrongStep, d.Step)
	}
	if ref == "" {
		return Draft{}, errs.Invalid("empty evidence reference")
	}
	return Draft{
		Step:        StepAwaitingCategory,
		UserID:      d.UserID,
		Username:    d.Username,
		EvidenceRef: ref,
		StartedAt:   d.StartedAt,
	}, nil
}

// withCategory may be repeated from an older keyboard until custom volume
// entry starts; later choices are cleared.
func (d Draft) withCategory(cat catalog.Category) (Draft, error) {
	switch d.Step {
	case StepAwaitingCategory, StepAwaitingSubtype, StepAwaitingVolume:
	default:
		return Draft{}, fmt.Errorf("%w: category at %s", errs.ErrWrongStep, d.Step)
	}
	return Draft{
		Step:        StepAwaitingSubtype,
		UserID:      d.UserID,
		Username:    d.Username,
		EvidenceRef: d.EvidenceRef,
		Category:    cat.ID,
		Strength:    cat.Strength,
		StartedAt:   d.StartedAt,
	}, nil
}

func (d Draft) withSubtype(cat catalog.Category, subtype string) (Draft, error) {
	switch d.Step {
	case StepAwaitingSubtype, StepAwaitingVolume:
	default:
		return Draft{}, fmt.Errorf("%w: subtype at %s", errs.ErrWrongStep, d.Step)
	}
	if cat.ID != d.Category {
		return Draft{}, fmt.Errorf("%w: subtype for %q while %q is chosen", errs.ErrWrongStep, cat.ID, d.Category)
	}
	if !cat.HasSubtype(subtype) {
		return Draft{}, errs.Invalid("subtype %q is not part of %q", subtype, cat.ID)
	}
	next := d
	next.Step = StepAwaitingVolume
	next.Subtype = subtype
	next.Strength = cat.Strength
	return next, nil
}

func (d Draft) withCustomVolume() (Draft, error) {
	if d.Step != StepAwaitingVolume {
		return Draft{}, fmt.Errorf("%w: volume at %s", errs.ErrWrongStep, d.Step)
	}
	next := d
	next.Step = StepAwaitingCustomVolume
	return next, nil
}

func (d Draft) submission(volumeML int, now time.Time) (model.Submission, error) {
	if d.Step != StepAwaitingVolume && d.Step != StepAwaitingCustomVolume {
		return model.Submission{}, fmt.Errorf("%w: finalize at %s", errs.ErrWrongStep, d.Step)
	}
	if volumeML <= 0 {
		return model.Submission{}, errs.Invalid("volume must be positive, got %d", volumeML)
	}
	return model.Submission{
		UserID:      d.UserID,
		Username:    d.Username,
		Category:    d.Category,
		Subtype:     d.Subtype,
		VolumeML:    volumeML,
		Strength:    d.Strength,
		EvidenceRef: d.EvidenceRef,
		Status:      enums.StatusPending,
		CreatedAt:   now.UTC(),
	}, nil
}
