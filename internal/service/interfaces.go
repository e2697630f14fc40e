package service

import (
	"context"
	"time"

	"github.com/cathy-ai/companion-gateway/models"
)

// AuthService covers the account lifecycle: self-registration (optionally
// gated by invite codes), credential verification, JWT issuance and parsing,
// and the admin-facing management operations.
type AuthService interface {
	Register(ctx context.Context, username, password, inviteCode string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)

	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// GetUser looks up the current account record. Authenticated request
	// handling calls this on every request so that disabling an account
	// takes effect immediately, not at token expiry.
	GetUser(ctx context.Context, username string) (models.User, error)

	SetActive(ctx context.Context, username string, active bool) error
	SetRole(ctx context.Context, username string, role string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateInvite(ctx context.Context, ttl time.Duration) (models.Invite, error)

	// Bootstrap creates the initial admin account when the user table is
	// empty and bootstrap credentials are configured. Called once at startup.
	Bootstrap(ctx context.Context) error
}
