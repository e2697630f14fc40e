package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUsernameTaken is returned when registering a user whose username
	// already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrUserNotFound is returned when a lookup or update targets a
	// username that does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInviteNotFound is returned when no invite with the given code exists.
	ErrInviteNotFound = errors.New("invalid invite code")

	// ErrInviteUsed is returned when the invite exists but has already been
	// consumed. Under concurrent registrations on the same code, exactly one
	// caller wins; every other caller receives this error.
	ErrInviteUsed = errors.New("invite code already used")

	// ErrInviteExpired is returned when the invite's expiry lies in the past.
	ErrInviteExpired = errors.New("invite code expired")
)
