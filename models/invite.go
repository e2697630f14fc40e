package models

import "time"

// Invite is a single-use token gating self-registration.
// The active→used transition is irreversible and happens at most once:
// the consuming UPDATE is guarded by is_active so concurrent registrations
// with the same code produce exactly one winner.
type Invite struct {
	// Code is the unique invite token handed out by an admin.
	Code string `json:"code"`

	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is optional; a nil value means the invite never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// UsedBy is the username that consumed the invite.
	UsedBy *string `json:"used_by,omitempty"`

	UsedAt *time.Time `json:"used_at,omitempty"`

	// IsActive is true until the invite is consumed.
	IsActive bool `json:"is_active"`
}

// Expired reports whether the invite has an expiry in the past relative to now.
func (i Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// TableName returns the name of the database table
// associated with the Invite model.
func (i Invite) TableName() string {
	return "invites"
}
