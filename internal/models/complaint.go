package models

import "time"

// ComplaintStatus is the lifecycle state of a complaint
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusSolved     ComplaintStatus = "solved"
)

// ComplaintStatuses lists every status in dashboard order.
var ComplaintStatuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusSolved}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	for _, known := range ComplaintStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Complaint represents a citizen-submitted service request
type Complaint struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	WardNumber    int             `json:"ward_number"`
	Status        ComplaintStatus `json:"status"`
	Rating        *int            `json:"rating"`
	ReviewComment string          `json:"review_comment"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ResolvedAt    *time.Time      `json:"resolved_at"`
}

// ComplaintInput is the payload for submitting a complaint.
type ComplaintInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	WardNumber  int    `json:"ward_number" validate:"required,min=1"`
}

// StatusUpdate is the payload for moving a complaint to another status.
type StatusUpdate struct {
	Status ComplaintStatus `json:"status" validate:"required,oneof=pending in_progress solved"`
}

// ReviewInput is the payload for rating a solved complaint.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ComplaintFilter narrows a complaint listing. Zero values mean no filter.
type ComplaintFilter struct {
	UserID     int64
	Status     ComplaintStatus
	WardNumber int
}
