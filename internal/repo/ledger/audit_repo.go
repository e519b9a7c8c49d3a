package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

type AuditRepo struct {
	store *Store
}

func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

func (r *AuditRepo) Save(ctx context.Context, entry model.Audit) error {
	if r.store == nil || r.store.db == nil {
		return nil
	}

	payload := entry.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`
		INSERT INTO moderation_audit (actor_id, action, payload, created_at)
		VALUES (?, ?, ?, ?)
	`), entry.ActorID, string(entry.Action), string(payload), toMillis(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert moderation audit: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]model.Audit, error) {
	if r.store == nil || r.store.db == nil {
		return []model.Audit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT id, actor_id, action, payload, created_at
		FROM moderation_audit
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent moderation audit: %w", err)
	}
	defer rows.Close()

	result := make([]model.Audit, 0, limit)
	for rows.Next() {
		var entry model.Audit
		var action string
		var payload []byte
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.ActorID, &action, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan moderation audit row: %w", err)
		}
		entry.Action = enums.AuditAction(action)
		entry.Payload = json.RawMessage(payload)
		entry.CreatedAt = fromMillis(createdAt)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation audit rows: %w", err)
	}

	return result, nil
}
