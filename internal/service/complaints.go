package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
)

// ListComplaints returns complaints matching f. Callers without staff rights only see their own.
func (s *Service) ListComplaints(ctx context.Context, caller *models.User, f models.ComplaintFilter) ([]*models.Complaint, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, newValidationError("status", "\""+string(f.Status)+"\" is not a valid choice.")
	}
	if !canViewAll(caller) {
		f.UserID = caller.ID
	}
	return s.repo.ListComplaints(ctx, f)
}

// CreateComplaint submits a new pending complaint owned by the caller
func (s *Service) CreateComplaint(ctx context.Context, caller *models.User, in *models.ComplaintInput) (*models.Complaint, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.clock()
	c := &models.Complaint{
		UserID:      caller.ID,
		Title:       in.Title,
		Description: in.Description,
		WardNumber:  in.WardNumber,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateComplaint(ctx, c); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"complaint_id": c.ID, "user_id": caller.ID, "ward": c.WardNumber}).Info("Complaint submitted")
	return c, nil
}

// GetComplaint returns a complaint the caller may see
func (s *Service) GetComplaint(ctx context.Context, caller *models.User, id int64) (*models.Complaint, error) {
	c, err := s.repo.FindComplaintByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canViewAll(caller) && c.UserID != caller.ID {
		return nil, ErrNotFound
	}
	return c, nil
}

// UpdateComplaintStatus moves a complaint to another status. Staff only.
// Entering solved stamps resolved_at and leaving solved clears it.
func (s *Service) UpdateComplaintStatus(ctx context.Context, caller *models.User, id int64, in *models.StatusUpdate) (*models.Complaint, error) {
	if !canViewAll(caller) {
		return nil, ErrPermissionDenied
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	c, err := s.GetComplaint(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var resolvedAt *time.Time
	if in.Status == models.StatusSolved {
		resolvedAt = c.ResolvedAt
		if c.Status != models.StatusSolved || resolvedAt == nil {
			resolvedAt = &now
		}
	}
	if err := s.repo.UpdateComplaintStatus(ctx, id, in.Status, resolvedAt, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"complaint_id": id,
		"from":         c.Status,
		"to":           in.Status,
		"updated_by":   caller.ID,
	}).Info("Complaint status changed")

	c.Status = in.Status
	c.ResolvedAt = resolvedAt
	c.UpdatedAt = now
	return c, nil
}

// ReviewComplaint records the owner's rating of a solved complaint
func (s *Service) ReviewComplaint(ctx context.Context, caller *models.User, id int64, in *models.ReviewInput) (*models.Complaint, error) {
	c, err := s.GetComplaint(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != caller.ID {
		return nil, ErrPermissionDenied
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	if c.Status != models.StatusSolved {
		return nil, newValidationError("status", "Only solved complaints can be reviewed.")
	}

	now := s.clock()
	if err := s.repo.SetComplaintReview(ctx, id, in.Rating, in.Comment, now); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("rating", "This complaint has already been reviewed.")
		}
		return nil, err
	}

	rating := in.Rating
	c.Rating = &rating
	c.ReviewComment = in.Comment
	c.UpdatedAt = now
	return c, nil
}
