package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

var ErrSuggestionNotPending = errors.New("suggestion is not pending")

const suggestionColumns = `id, user_id, username, name, strength, subtypes, status, created_at, decided_at, decided_by`

type SuggestionsRepo struct {
	store *Store
}

func NewSuggestionsRepo(store *Store) *SuggestionsRepo {
	return &SuggestionsRepo{store: store}
}

func (r *SuggestionsRepo) Insert(ctx context.Context, sg model.Suggestion) (model.Suggestion, error) {
	if r.store == nil || r.store.db == nil {
		return model.Suggestion{}, fmt.Errorf("ledger is not configured")
	}
	if sg.Status == "" {
		sg.Status = enums.StatusPending
	}
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = time.Now()
	}
	sg.CreatedAt = sg.CreatedAt.UTC().Truncate(time.Millisecond)

	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		INSERT INTO suggestions (user_id, username, name, strength, subtypes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), sg.UserID, sg.Username, sg.Name, sg.Strength, strings.Join(sg.Subtypes, ","), string(sg.Status), toMillis(sg.CreatedAt)).Scan(&sg.ID)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("insert suggestion: %w", err)
	}
	return sg, nil
}

func (r *SuggestionsRepo) Resolve(ctx context.Context, id int64, status enums.Status, actorID int64, at time.Time) (model.Suggestion, error) {
	if r.store == nil || r.store.db == nil {
		return model.Suggestion{}, fmt.Errorf("ledger is not configured")
	}
	if status != enums.StatusApproved && status != enums.StatusRejected {
		return model.Suggestion{}, fmt.Errorf("invalid target status %q", status)
	}

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		UPDATE suggestions
		SET status = ?, decided_at = ?, decided_by = ?
		WHERE id = ? AND status = 'pending'
		RETURNING `+suggestionColumns,
	), string(status), toMillis(at), actorID, id)

	sg, err := scanSuggestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Suggestion{}, ErrSuggestionNotPending
		}
		return model.Suggestion{}, fmt.Errorf("resolve suggestion: %w", err)
	}
	return sg, nil
}

func (r *SuggestionsRepo) ListByStatus(ctx context.Context, status enums.Status, limit int) ([]model.Suggestion, error) {
	if r.store == nil || r.store.db == nil {
		return []model.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE status = ?
		ORDER BY id DESC
		LIMIT ?
	`), string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	result := make([]model.Suggestion, 0, limit)
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion row: %w", err)
		}
		result = append(result, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestion rows: %w", err)
	}
	return result, nil
}

func scanSuggestion(row rowScanner) (model.Suggestion, error) {
	var sg model.Suggestion
	var subtypes, status string
	var createdAt int64
	var decidedAt sql.NullInt64
	if err := row.Scan(&sg.ID, &sg.UserID, &sg.Username, &sg.Name, &sg.Strength, &subtypes, &status, &createdAt, &decidedAt, &sg.DecidedBy); err != nil {
		return model.Suggestion{}, err
	}
	if subtypes != "" {
		sg.Subtypes = strings.Split(subtypes, ",")
	}
	sg.Status = enums.Status(status)
	sg.CreatedAt = fromMillis(createdAt)
	sg.DecidedAt = fromNullMillis(decidedAt)
	return sg, nil
}
