package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/cleancare-api/internal/models"
)

// ComplaintStatusCounts returns the number of complaints per status
func (r *Repository) ComplaintStatusCounts(ctx context.Context) (map[models.ComplaintStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints by status: %w", err)
	}
	defer rows.Close()

	counts := map[models.ComplaintStatus]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[models.ComplaintStatus(status)] = n
	}
	return counts, rows.Err()
}

// WardPerformance returns per-ward totals ordered by ward number
func (r *Repository) WardPerformance(ctx context.Context) ([]models.WardPerformance, error) {
	query := `
		SELECT ward_number,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0)
		FROM complaints
		GROUP BY ward_number
		ORDER BY ward_number`
	rows, err := r.db.QueryContext(ctx, query, string(models.StatusPending), string(models.StatusSolved))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate wards: %w", err)
	}
	defer rows.Close()

	wards := []models.WardPerformance{}
	for rows.Next() {
		var w models.WardPerformance
		if err := rows.Scan(&w.WardNumber, &w.Total, &w.Pending, &w.Resolved); err != nil {
			return nil, fmt.Errorf("failed to scan ward row: %w", err)
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

// UserCounts returns total users and the admin/superuser breakdown
func (r *Repository) UserCounts(ctx context.Context) (models.UserCounts, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_staff = $1 AND is_superuser = $2 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN is_superuser = $3 THEN 1 ELSE 0 END), 0)
		FROM users`
	var c models.UserCounts
	err := r.db.QueryRowContext(ctx, query, true, false, true).Scan(&c.Total, &c.Admins, &c.SuperAdmins)
	if err != nil {
		return c, fmt.Errorf("failed to count users: %w", err)
	}
	return c, nil
}

// AverageRating returns the mean review rating, or false when nothing has been rated
func (r *Repository) AverageRating(ctx context.Context) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT AVG(rating) FROM complaints WHERE rating IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}

// SolvedComplaintTimes returns creation and resolution times of solved complaints
func (r *Repository) SolvedComplaintTimes(ctx context.Context) ([]models.ComplaintTimes, error) {
	query := `SELECT created_at, resolved_at FROM complaints WHERE status = $1 AND resolved_at IS NOT NULL`
	return r.complaintTimes(ctx, query, string(models.StatusSolved))
}

// ComplaintTimesSince returns timestamps of complaints created or resolved at or after since
func (r *Repository) ComplaintTimesSince(ctx context.Context, since time.Time) ([]models.ComplaintTimes, error) {
	query := `SELECT created_at, resolved_at FROM complaints WHERE created_at >= $1 OR resolved_at >= $1`
	return r.complaintTimes(ctx, query, since.UTC())
}

func (r *Repository) complaintTimes(ctx context.Context, query string, args ...any) ([]models.ComplaintTimes, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load complaint times: %w", err)
	}
	defer rows.Close()

	out := []models.ComplaintTimes{}
	for rows.Next() {
		var ct models.ComplaintTimes
		var resolvedAt sql.NullTime
		if err := rows.Scan(&ct.CreatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan complaint times: %w", err)
		}
		ct.CreatedAt = ct.CreatedAt.UTC()
		if resolvedAt.Valid {
			t := resolvedAt.Time.UTC()
			ct.ResolvedAt = &t
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}
