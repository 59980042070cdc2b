package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/cleancare-api/internal/config"
	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
)

const JWTSecret = "test-secret"

// OpenInMemoryDB opens a private in-memory SQLite database with migrations applied.
// The database is closed when the test ends.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := repository.Open(context.Background(), repository.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Config returns a configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		Port:               "0",
		DBDriver:           repository.DriverSQLite,
		DBConn:             "file::memory:",
		LogLevel:           "error",
		JWTSecret:          JWTSecret,
		AccessTokenTTL:     5 * time.Minute,
		RefreshTokenTTL:    time.Hour,
		LoginRatePerMinute: 600,
		LoginRateBurst:     100,
	}
}

// NullLogger returns a logger that discards output and records entries in the hook.
func NullLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// CreateUser inserts a user with the given password hashed at minimum cost.
func CreateUser(t *testing.T, repo *repository.Repository, username, password string, staff, super bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsStaff:      staff,
		IsSuperuser:  super,
		IsActive:     true,
	}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateComplaint inserts a complaint owned by userID.
func CreateComplaint(t *testing.T, repo *repository.Repository, userID int64, ward int, status models.ComplaintStatus) *models.Complaint {
	t.Helper()
	c := &models.Complaint{UserID: userID, Title: "Complaint in ward", WardNumber: ward, Status: status}
	if status == models.StatusSolved {
		now := time.Now().UTC()
		c.ResolvedAt = &now
	}
	if err := repo.CreateComplaint(context.Background(), c); err != nil {
		t.Fatalf("create complaint: %v", err)
	}
	return c
}
