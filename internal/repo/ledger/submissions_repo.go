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

var ErrSubmissionNotPending = errors.New("no pending submission matches")

const submissionColumns = `id, user_id, username, category, subtype, volume_ml, strength,
	evidence_ref, evidence_key, status, created_at, decided_at, decided_by`

type SubmissionsRepo struct {
	store *Store
}

func NewSubmissionsRepo(store *Store) *SubmissionsRepo {
	return &SubmissionsRepo{store: store}
}

func (r *SubmissionsRepo) Insert(ctx context.Context, rec model.Submission) (model.Submission, error) {
	if r.store == nil || r.store.db == nil {
		return model.Submission{}, fmt.Errorf("ledger is not configured")
	}
	if rec.Status == "" {
		rec.Status = enums.StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Millisecond)

	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		INSERT INTO submissions (user_id, username, category, subtype, volume_ml, strength,
			evidence_ref, evidence_key, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), rec.UserID, rec.Username, rec.Category, rec.Subtype, rec.VolumeML, rec.Strength,
		rec.EvidenceRef, rec.EvidenceKey, string(rec.Status), toMillis(rec.CreatedAt),
	).Scan(&rec.ID)
	if err != nil {
		return model.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return rec, nil
}

// ResolvePending moves the newest pending submission of userID with the
// given volume to status. A concurrent resolver loses with
// ErrSubmissionNotPending.
func (r *SubmissionsRepo) ResolvePending(ctx context.Context, userID int64, volumeML int, status enums.Status, actorID int64, at time.Time) (model.Submission, error) {
	if r.store == nil || r.store.db == nil {
		return model.Submission{}, fmt.Errorf("ledger is not configured")
	}
	if status != enums.StatusApproved && status != enums.StatusRejected {
		return model.Submission{}, fmt.Errorf("invalid target status %q", status)
	}

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		UPDATE submissions
		SET status = ?, decided_at = ?, decided_by = ?
		WHERE id = (
			SELECT id FROM submissions
			WHERE user_id = ? AND volume_ml = ? AND status = 'pending'
			ORDER BY id DESC
			LIMIT 1
		) AND status = 'pending'
		RETURNING `+submissionColumns,
	), string(status), toMillis(at), actorID, userID, volumeML)

	rec, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Submission{}, ErrSubmissionNotPending
		}
		return model.Submission{}, fmt.Errorf("resolve pending submission: %w", err)
	}
	return rec, nil
}

func (r *SubmissionsRepo) ListByStatus(ctx context.Context, status enums.Status, limit int) ([]model.Submission, error) {
	if r.store == nil || r.store.db == nil {
		return []model.Submission{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE status = ?
		ORDER BY id DESC
		LIMIT ?
	`), string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions by status: %w", err)
	}
	return collectSubmissions(rows, limit)
}

func (r *SubmissionsRepo) History(ctx context.Context, userID int64, limit int) ([]model.Submission, error) {
	if r.store == nil || r.store.db == nil {
		return []model.Submission{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list submission history: %w", err)
	}
	return collectSubmissions(rows, limit)
}

func (r *SubmissionsRepo) CountByStatus(ctx context.Context, userID int64, status enums.Status) (int, error) {
	if r.store == nil || r.store.db == nil {
		return 0, nil
	}

	var count int
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		SELECT COUNT(*) FROM submissions WHERE user_id = ? AND status = ?
	`), userID, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// UserTotals counts every record of the user and sums approved volume.
func (r *SubmissionsRepo) UserTotals(ctx context.Context, userID int64) (model.UserStats, error) {
	if r.store == nil || r.store.db == nil {
		return model.UserStats{}, nil
	}

	var stats model.UserStats
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'approved' THEN volume_ml ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'approved' THEN volume_ml * strength / 100.0 ELSE 0 END), 0)
		FROM submissions
		WHERE user_id = ?
	`), userID).Scan(&stats.Records, &stats.ApprovedVolumeML, &stats.PureAlcoholML)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("aggregate user totals: %w", err)
	}
	return stats, nil
}

// PeriodVolumes sums approved volume created at or after each bound.
func (r *SubmissionsRepo) PeriodVolumes(ctx context.Context, userID int64, dayStart, weekStart, monthStart time.Time) (model.PeriodVolumes, error) {
	if r.store == nil || r.store.db == nil {
		return model.PeriodVolumes{}, nil
	}

	var out model.PeriodVolumes
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN created_at >= ? THEN volume_ml ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN volume_ml ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN volume_ml ELSE 0 END), 0)
		FROM submissions
		WHERE user_id = ? AND status = 'approved'
	`), toMillis(dayStart), toMillis(weekStart), toMillis(monthStart), userID).Scan(&out.Day, &out.Week, &out.Month)
	if err != nil {
		return model.PeriodVolumes{}, fmt.Errorf("aggregate period volumes: %w", err)
	}
	return out, nil
}

func (r *SubmissionsRepo) CategoryStats(ctx context.Context, userID int64) ([]model.CategoryStat, error) {
	if r.store == nil || r.store.db == nil {
		return []model.CategoryStat{}, nil
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT
			category,
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'approved' THEN volume_ml ELSE 0 END), 0) AS approved_volume,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN volume_ml * strength / 100.0 ELSE 0 END), 0)
		FROM submissions
		WHERE user_id = ?
		GROUP BY category
		ORDER BY approved_volume DESC, category
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate category stats: %w", err)
	}
	defer rows.Close()

	result := make([]model.CategoryStat, 0, 8)
	for rows.Next() {
		var stat model.CategoryStat
		if err := rows.Scan(&stat.Category, &stat.Records, &stat.VolumeML, &stat.PureAlcoholML); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		result = append(result, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category stats: %w", err)
	}
	return result, nil
}

// Leaderboard ranks users by approved pure alcohol.
func (r *SubmissionsRepo) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if r.store == nil || r.store.db == nil {
		return []model.LeaderboardEntry{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`
		SELECT
			user_id,
			MAX(username),
			SUM(volume_ml),
			SUM(volume_ml * strength / 100.0) AS pure_alcohol
		FROM submissions
		WHERE status = 'approved'
		GROUP BY user_id
		ORDER BY pure_alcohol DESC, user_id
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	result := make([]model.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry model.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.VolumeML, &entry.PureAlcoholML); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}
	return result, nil
}

func (r *SubmissionsRepo) SetEvidenceKey(ctx context.Context, id int64, key string) error {
	if r.store == nil || r.store.db == nil {
		return nil
	}

	result, err := r.store.db.ExecContext(ctx, r.store.rebind(`
		UPDATE submissions SET evidence_key = ? WHERE id = ?
	`), key, id)
	if err != nil {
		return fmt.Errorf("set evidence key: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("evidence key rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (model.Submission, error) {
	var rec model.Submission
	var status string
	var createdAt int64
	var decidedAt sql.NullInt64
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Username, &rec.Category, &rec.Subtype, &rec.VolumeML, &rec.Strength,
		&rec.EvidenceRef, &rec.EvidenceKey, &status, &createdAt, &decidedAt, &rec.DecidedBy,
	); err != nil {
		return model.Submission{}, err
	}
	rec.Status = enums.Status(status)
	rec.CreatedAt = fromMillis(createdAt)
	rec.DecidedAt = fromNullMillis(decidedAt)
	return rec, nil
}

func collectSubmissions(rows *sql.Rows, capacity int) ([]model.Submission, error) {
	defer rows.Close()

	result := make([]model.Submission, 0, capacity)
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return result, nil
}
