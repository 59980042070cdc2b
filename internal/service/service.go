package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/auth"
	"github.com/Dan9191/cleancare-api/internal/config"
	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
)

// Service handles business logic
type Service struct {
	repo     *repository.Repository
	log      *logrus.Logger
	config   *config.Config
	tokens   *auth.TokenManager
	validate *validator.Validate
	now      func() time.Time
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		log:      log,
		config:   cfg,
		tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		validate: newValidator(),
		now:      time.Now,
	}
}

// Ping checks that the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func canViewAll(caller *models.User) bool {
	return caller.IsStaff || caller.IsSuperuser
}
