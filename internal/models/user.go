package models

import "time"

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"` // Not serialized
	DateJoined   time.Time `json:"date_joined"`
}

// UserInput is the writable subset of a user accepted on create and update.
// Nil fields are left untouched on update.
type UserInput struct {
	Username    *string `json:"username" validate:"omitnil,min=1,max=150,username"`
	Email       *string `json:"email" validate:"omitnil,omitempty,email,max=254"`
	FirstName   *string `json:"first_name" validate:"omitnil,max=150"`
	LastName    *string `json:"last_name" validate:"omitnil,max=150"`
	Password    *string `json:"password" validate:"omitnil,min=8,max=128"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsActive    *bool   `json:"is_active"`
}

// Apply copies the non-nil profile fields onto u. Role and status flags and password are
// handled by the caller because they depend on who is asking.
func (in *UserInput) Apply(u *User) {
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
}

// UserFilter narrows the superuser user listing. Zero values mean no filter.
type UserFilter struct {
	Search   string
	IsActive *bool
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is returned by a refresh.
type AccessToken struct {
	Access string `json:"access"`
}
