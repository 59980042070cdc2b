package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
)

const duplicateUsernameMsg = "A user with that username already exists."

// ListUsers returns the users matching f to a superuser and only the caller
// otherwise. Filters do not apply to the caller's own record.
func (s *Service) ListUsers(ctx context.Context, caller *models.User, f models.UserFilter) ([]*models.User, error) {
	if !caller.IsSuperuser {
		self, err := s.scopedUser(ctx, caller, caller.ID)
		if err != nil {
			return nil, err
		}
		return []*models.User{self}, nil
	}
	return s.repo.ListUsers(ctx, f)
}

// GetUser returns the user with id if the caller may see it
func (s *Service) GetUser(ctx context.Context, caller *models.User, id int64) (*models.User, error) {
	return s.scopedUser(ctx, caller, id)
}

// CreateUser registers a new account. Only superusers may create users.
func (s *Service) CreateUser(ctx context.Context, caller *models.User, in *models.UserInput) (*models.User, error) {
	if !caller.IsSuperuser {
		return nil, ErrPermissionDenied
	}
	ve := &ValidationError{Fields: map[string][]string{}}
	if in.Username == nil {
		ve.Add("username", "This field is required.")
	}
	if in.Password == nil {
		ve.Add("password", "This field is required.")
	}
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{PasswordHash: hashed, IsActive: true}
	in.Apply(user)
	applyRoles(user, in)

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("username", duplicateUsernameMsg)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "created_by": caller.ID}).Info("User created")
	return user, nil
}

// UpdateUser applies in to the user with id. A full update (partial == false)
// requires username. Role and status flags are honoured only for superuser callers.
func (s *Service) UpdateUser(ctx context.Context, caller *models.User, id int64, in *models.UserInput, partial bool) (*models.User, error) {
	user, err := s.scopedUser(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !partial && in.Username == nil {
		return nil, newValidationError("username", "This field is required.")
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	if caller.IsSuperuser && id == caller.ID && in.IsActive != nil && !*in.IsActive {
		return nil, newValidationError("is_active", "You cannot deactivate your own account.")
	}

	wasActive := user.IsActive
	in.Apply(user)
	if caller.IsSuperuser {
		applyRoles(user, in)
	}
	if in.Password != nil {
		if user.PasswordHash, err = hashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, newValidationError("username", duplicateUsernameMsg)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "updated_by": caller.ID}).Info("User updated")
	if wasActive != user.IsActive {
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "is_active": user.IsActive, "updated_by": caller.ID}).Info("User status changed")
	}
	return user, nil
}

// applyRoles copies the privileged flags. Callers check that a superuser is asking.
func applyRoles(u *models.User, in *models.UserInput) {
	if in.IsStaff != nil {
		u.IsStaff = *in.IsStaff
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
}

// DeleteUser removes a user. Only superusers may delete, and never their own account.
func (s *Service) DeleteUser(ctx context.Context, caller *models.User, id int64) error {
	if _, err := s.scopedUser(ctx, caller, id); err != nil {
		return err
	}
	if !caller.IsSuperuser {
		return ErrPermissionDenied
	}
	if id == caller.ID {
		return newValidationError(NonFieldErrors, "You cannot delete your own account.")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "deleted_by": caller.ID}).Info("User deleted")
	return nil
}

// scopedUser loads id unless the caller is outside their scope, in which case it
// reports ErrNotFound so that other accounts' existence is not revealed.
func (s *Service) scopedUser(ctx context.Context, caller *models.User, id int64) (*models.User, error) {
	if !caller.IsSuperuser && id != caller.ID {
		return nil, ErrNotFound
	}
	user, err := s.repo.FindUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
