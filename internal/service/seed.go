package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
)

type seedFile struct {
	Users []struct {
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		Email       string `yaml:"email"`
		FirstName   string `yaml:"first_name"`
		LastName    string `yaml:"last_name"`
		IsStaff     bool   `yaml:"is_staff"`
		IsSuperuser bool   `yaml:"is_superuser"`
		IsActive    *bool  `yaml:"is_active"`
	} `yaml:"users"`
}

// SeedUsersFromFile creates the accounts listed in a YAML file. Usernames that
// already exist are left alone. It returns the number of users created.
func (s *Service) SeedUsersFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, u := range sf.Users {
		if u.Username == "" || u.Password == "" {
			s.log.Warn("Skipping seed entry without username or password")
			continue
		}
		if _, err := s.repo.FindUserByUsername(ctx, u.Username); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}
		hashed, err := hashPassword(u.Password)
		if err != nil {
			return created, err
		}
		user := &models.User{
			Username:     u.Username,
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			IsStaff:      u.IsStaff,
			IsSuperuser:  u.IsSuperuser,
			IsActive:     u.IsActive == nil || *u.IsActive,
			PasswordHash: hashed,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		created++
		s.log.WithField("username", u.Username).Info("Seeded user")
	}
	return created, nil
}
