package store

import (
	"context"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

// UserRepository is the persistence contract for user accounts.
type UserRepository interface {
	// CreateUser persists a new user. When inviteCode is non-empty the
	// invite is validated and consumed in the same transaction as the user
	// insert, so two registrations can never consume one invite.
	CreateUser(ctx context.Context, user models.User, inviteCode string) (models.User, error)

	// FindUserByUsername returns the stored account or ErrUserNotFound.
	FindUserByUsername(ctx context.Context, username string) (models.User, error)

	// SetActive flips the is_active flag; ErrUserNotFound when no row matches.
	SetActive(ctx context.Context, username string, active bool) error

	// SetRole updates the role column; ErrUserNotFound when no row matches.
	SetRole(ctx context.Context, username string, role string) error

	// TouchLastLogin records a successful credential check.
	TouchLastLogin(ctx context.Context, username string, at time.Time) error

	// ListUsers returns all accounts, newest first.
	ListUsers(ctx context.Context) ([]models.User, error)

	// CountUsers returns the total number of accounts.
	CountUsers(ctx context.Context) (int, error)
}

// InviteRepository is the persistence contract for registration invites.
type InviteRepository interface {
	// CreateInvite persists a freshly generated invite.
	CreateInvite(ctx context.Context, invite models.Invite) (models.Invite, error)

	// FindInvite returns the invite or ErrInviteNotFound.
	FindInvite(ctx context.Context, code string) (models.Invite, error)
}

// Storages aggregates all repositories backed by one database connection.
type Storages struct {
	Users   UserRepository
	Invites InviteRepository

	db *DB
}

// NewStorages wires the repositories on top of an opened *DB.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		Users:   NewUserRepository(db, log),
		Invites: NewInviteRepository(db, log),
		db:      db,
	}
}
