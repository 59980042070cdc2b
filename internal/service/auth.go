package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/cleancare-api/internal/auth"
	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
)

// Login authenticates a user and returns an access/refresh token pair
func (s *Service) Login(ctx context.Context, creds *models.Credentials) (*models.TokenPair, error) {
	if err := s.check(creds); err != nil {
		return nil, err
	}

	user, err := s.repo.FindUserByUsername(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.WithField("username", creds.Username).Info("Login failed: unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.log.WithField("username", creds.Username).Info("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.WithField("user_id", user.ID).Info("Login failed: account inactive")
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("User logged in")
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *Service) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.AccessToken, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	claims, err := s.tokens.Parse(req.Refresh, auth.TokenRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.FindUserByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	access, err := s.tokens.IssueAccess(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &models.AccessToken{Access: access}, nil
}

// AuthenticateToken resolves a bearer access token to the user it was issued for
func (s *Service) AuthenticateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token, auth.TokenAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.FindUserByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
