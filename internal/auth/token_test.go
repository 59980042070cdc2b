package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/cleancare-api/internal/models"
)

const testSecret = "test-secret"

func TestIssuePair_ParsesByType(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute, time.Hour)
	access, refresh, err := m.IssuePair(42)
	require.NoError(t, err)

	claims, err := m.Parse(access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.NotEmpty(t, claims.ID)

	claims, err = m.Parse(refresh, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)

	_, err = m.Parse(refresh, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.Parse(access, TokenRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute, time.Hour)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	access, err := m.IssueAccess(1)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(access, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecretAndGarbage(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute, time.Hour)
	access, err := m.IssueAccess(7)
	require.NoError(t, err)

	other := NewTokenManager("other-secret", time.Minute, time.Hour)
	_, err = other.Parse(access, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-jwt", TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute, time.Hour)
	claims := Claims{
		UserID:    1,
		TokenType: TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = m.Parse(tok, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	u := &models.User{ID: 3, Username: "zoe"}
	got, ok := UserFromContext(WithUser(context.Background(), u))
	require.True(t, ok)
	assert.Equal(t, u, got)
}
