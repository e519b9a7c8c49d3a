package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

const suspensionColumns = `id, user_id, username, kind, duration_hours, active_until, created_at`

type SuspensionsRepo struct {
	store *Store
}

func NewSuspensionsRepo(store *Store) *SuspensionsRepo {
	return &SuspensionsRepo{store: store}
}

func (r *SuspensionsRepo) Insert(ctx context.Context, s model.Suspension) (model.Suspension, error) {
	if r.store == nil || r.store.db == nil {
		return model.Suspension{}, fmt.Errorf("ledger is not configured")
	}
	if s.Kind == "" {
		s.Kind = enums.SuspensionKindRejectionBan
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC().Truncate(time.Millisecond)
	s.ActiveUntil = s.ActiveUntil.UTC().Truncate(time.Millisecond)

	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		INSERT INTO suspensions (user_id, username, kind, duration_hours, active_until, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), s.UserID, s.Username, string(s.Kind), s.DurationHours, toMillis(s.ActiveUntil), toMillis(s.CreatedAt)).Scan(&s.ID)
	if err != nil {
		return model.Suspension{}, fmt.Errorf("insert suspension: %w", err)
	}
	return s, nil
}

// Active returns the suspension ending last among those still running at now.
func (r *SuspensionsRepo) Active(ctx context.Context, userID int64, now time.Time) (model.Suspension, bool, error) {
	if r.store == nil || r.store.db == nil {
		return model.Suspension{}, false, nil
	}

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		SELECT `+suspensionColumns+`
		FROM suspensions
		WHERE user_id = ? AND active_until > ?
		ORDER BY active_until DESC
		LIMIT 1
	`), userID, toMillis(now))

	s, err := scanSuspension(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Suspension{}, false, nil
		}
		return model.Suspension{}, false, fmt.Errorf("query active suspension: %w", err)
	}
	return s, true, nil
}

// ListByUser returns the user's suspensions, most recent first.
func (r *SuspensionsRepo) ListByUser(ctx context.Context, userID int64) ([]model.Suspension, error) {
	if r.store == nil || r.store.db == nil {
		return []model.Suspension{}, nil
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT `+suspensionColumns+`
		FROM suspensions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("list suspensions: %w", err)
	}
	defer rows.Close()

	result := make([]model.Suspension, 0, 4)
	for rows.Next() {
		s, err := scanSuspension(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suspension row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suspension rows: %w", err)
	}
	return result, nil
}

func scanSuspension(row rowScanner) (model.Suspension, error) {
	var s model.Suspension
	var kind string
	var activeUntil, createdAt int64
	if err := row.Scan(&s.ID, &s.UserID, &s.Username, &kind, &s.DurationHours, &activeUntil, &createdAt); err != nil {
		return model.Suspension{}, err
	}
	s.Kind = enums.SuspensionKind(kind)
	s.ActiveUntil = fromMillis(activeUntil)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}
