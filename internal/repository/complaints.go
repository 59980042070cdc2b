package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/cleancare-api/internal/models"
)

const complaintColumns = `id, user_id, title, description, ward_number, status, rating, review_comment, created_at, updated_at, resolved_at`

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	c := &models.Complaint{}
	var rating sql.NullInt64
	var resolvedAt sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.WardNumber, &c.Status,
		&rating, &c.ReviewComment, &c.CreatedAt, &c.UpdatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		c.Rating = &v
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		c.ResolvedAt = &t
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// CreateComplaint inserts a complaint. Zero timestamps default to now and an empty status to pending.
func (r *Repository) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	var rating sql.NullInt64
	if c.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*c.Rating), Valid: true}
	}
	query := `
		INSERT INTO complaints (user_id, title, description, ward_number, status, rating, review_comment, created_at, updated_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Title, c.Description, c.WardNumber, string(c.Status),
		rating, c.ReviewComment, c.CreatedAt, c.UpdatedAt, nullTime(c.ResolvedAt)).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// FindComplaintByID retrieves a complaint by id
func (r *Repository) FindComplaintByID(ctx context.Context, id int64) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	c, err := scanComplaint(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find complaint: %w", err)
	}
	return c, nil
}

// ListComplaints returns complaints matching f, newest first
func (r *Repository) ListComplaints(ctx context.Context, f models.ComplaintFilter) ([]*models.Complaint, error) {
	clauses := []string{"1=1"}
	args := []any{}
	idx := 1
	if f.UserID != 0 {
		clauses = append(clauses, "user_id = $"+strconv.Itoa(idx))
		args = append(args, f.UserID)
		idx++
	}
	if f.Status != "" {
		clauses = append(clauses, "status = $"+strconv.Itoa(idx))
		args = append(args, string(f.Status))
		idx++
	}
	if f.WardNumber != 0 {
		clauses = append(clauses, "ward_number = $"+strconv.Itoa(idx))
		args = append(args, f.WardNumber)
		idx++
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	out := []*models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return out, nil
}

// UpdateComplaintStatus sets status, resolved_at and updated_at on a complaint
func (r *Repository) UpdateComplaintStatus(ctx context.Context, id int64, status models.ComplaintStatus, resolvedAt *time.Time, updatedAt time.Time) error {
	query := `UPDATE complaints SET status = $1, resolved_at = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, string(status), nullTime(resolvedAt), updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetComplaintReview stores a rating on a complaint that has none yet.
// ErrDuplicate means the complaint was already rated.
func (r *Repository) SetComplaintReview(ctx context.Context, id int64, rating int, comment string, updatedAt time.Time) error {
	query := `UPDATE complaints SET rating = $1, review_comment = $2, updated_at = $3 WHERE id = $4 AND rating IS NULL`
	res, err := r.db.ExecContext(ctx, query, rating, comment, updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set complaint review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set complaint review: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}
