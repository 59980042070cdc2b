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

const userColumns = `id, username, email, first_name, last_name, password_hash, is_staff, is_superuser, is_active, date_joined`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsStaff, &user.IsSuperuser, &user.IsActive, &user.DateJoined)
	if err != nil {
		return nil, err
	}
	user.DateJoined = user.DateJoined.UTC()
	return user, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC().Truncate(time.Microsecond)
	}
	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff, is_superuser, is_active, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.IsStaff, user.IsSuperuser, user.IsActive, user.DateJoined).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns users matching f ordered by id
func (r *Repository) ListUsers(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := "$" + strconv.Itoa(len(args))
		clauses = append(clauses, "(LOWER(username) LIKE "+n+" OR LOWER(email) LIKE "+n+
			" OR LOWER(first_name) LIKE "+n+" OR LOWER(last_name) LIKE "+n+")")
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		clauses = append(clauses, "is_active = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListSuperusers returns superusers ordered by id
func (r *Repository) ListSuperusers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE is_superuser = $1 ORDER BY id`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list superusers: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser writes every mutable column of user. id and date_joined are never touched.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4,
		    password_hash = $5, is_staff = $6, is_superuser = $7, is_active = $8
		WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.IsStaff, user.IsSuperuser, user.IsActive, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and, through the foreign key, their complaints
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
