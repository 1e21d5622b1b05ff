package model

import (
	"time"
)

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FullName       *string    `json:"full_name,omitempty"`
	HashedPassword string     `json:"-"` // Not exposed
	IsActive       bool       `json:"is_active"`
	IsSuperuser    bool       `json:"is_superuser"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// UserPatch enumerates the fields a user may change on their own record.
// IsSuperuser is deliberately absent; it cannot be set through any patch path.
type UserPatch struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Apply returns a copy of u with the present patch fields applied. Password
// is not applied here; it must be hashed before storage, which is the
// caller's job.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FullName != nil {
		u.FullName = p.FullName
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	return u
}
