package models

import "time"

// Known user roles. Any other value is rejected when setting a role.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account entity used for authentication and authorization.
// The username is the primary key; accounts are never physically deleted,
// only deactivated via IsActive.
type User struct {
	// Username is the unique user identifier used during authentication.
	Username string `json:"username"`

	// Password carries the plaintext password on inbound requests only.
	// It is never persisted; the store keeps PasswordHash instead.
	Password string `json:"password,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	// Role is either "admin" or "user".
	Role string `json:"role"`

	// IsActive gates login. Disabled accounts keep their data but every
	// authentication attempt is rejected.
	IsActive bool `json:"is_active"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// LastLoginAt is updated on every successful credential check.
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
