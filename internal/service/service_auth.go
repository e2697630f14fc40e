package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/store"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/internal/validators"
	"github.com/cathy-ai/companion-gateway/models"
)

// authService is the concrete implementation of AuthService.
// It handles registration, credential verification, and the JWT token
// lifecycle using a UserRepository for persistence and bcrypt for
// password hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// inviteRepository issues invite codes. Consumption happens inside
	// user registration so that it stays atomic with the account INSERT.
	inviteRepository store.InviteRepository

	// codes generates invite code strings.
	codes *utils.UUIDGenerator

	// credentials enforces the username and password policy on registration.
	credentials validators.Validator

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// registrationEnabled and requireInvite are the self-registration toggles.
	registrationEnabled bool
	requireInvite       bool

	// bootstrapUsername and bootstrapPassword seed the first admin account
	// when the user table is empty. Both must be set for Bootstrap to act.
	bootstrapUsername string
	bootstrapPassword string

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given repositories
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(users store.UserRepository, invites store.InviteRepository, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:      users,
		inviteRepository:    invites,
		codes:               utils.NewUUIDGenerator(),
		credentials:         validators.NewCredentialsValidator(),
		tokenSignKey:        cfg.TokenSignKey,
		tokenIssuer:         cfg.TokenIssuer,
		tokenDuration:       cfg.TokenDuration,
		registrationEnabled: cfg.RegistrationEnabled,
		requireInvite:       cfg.RegistrationRequireInvite,
		bootstrapUsername:   cfg.BootstrapAdminUsername,
		bootstrapPassword:   cfg.BootstrapAdminPassword,
		logger:              logger,
	}
}

// Register creates a new user account.
//
// It runs the credential policy checks, enforces the registration toggles,
// hashes the password with bcrypt, and delegates persistence to the
// UserRepository. When an invite is required, its validation and consumption
// happen atomically with the account INSERT.
//
// Returns the persisted user or:
//   - ErrInvalidDataProvided (wrapping the policy violation) if the
//     username or password fails validation.
//   - ErrRegistrationDisabled / ErrInviteRequired per the configured toggles.
//   - A wrapped storage error if the repository call fails (e.g. username
//     already taken — see store.ErrUsernameTaken — or an invite problem).
func (a *authService) Register(ctx context.Context, username, password, inviteCode string) (models.User, error) {
	log := logger.FromContext(ctx)

	if !a.registrationEnabled {
		return models.User{}, ErrRegistrationDisabled
	}
	if err := a.credentials.Validate(ctx, models.User{Username: username, Password: password}); err != nil {
		log.Error().Err(err).Str("username", username).Msg("invalid registration data provided")
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidDataProvided, err)
	}
	if a.requireInvite && inviteCode == "" {
		return models.User{}, ErrInviteRequired
	}
	if !a.requireInvite {
		// an explicitly supplied code is still honored below; an open
		// instance just does not demand one
		inviteCode = ""
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Err(err).Str("username", username).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	registeredUser, err := a.userRepository.CreateUser(ctx, user, inviteCode)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	log.Info().Str("username", username).Msg("user registered")
	return registeredUser, nil
}

// Login authenticates an existing user.
//
// It looks up the account by username, compares the supplied password against
// the stored bcrypt hash, rejects disabled accounts, and records the login
// timestamp on success.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if username or password is empty.
//   - A wrapped storage error if the lookup fails (e.g. user not found —
//     see store.ErrUserNotFound).
//   - ErrWrongPassword if the password does not match.
//   - ErrUserDisabled if the account has been deactivated.
func (a *authService) Login(ctx context.Context, username, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" {
		log.Error().Str("username", username).Msg("invalid login data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByUsername(ctx, username)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user search by username failed")
		if errors.Is(err, store.ErrUserNotFound) {
			// do not reveal whether the username exists
			return models.User{}, ErrWrongPassword
		}
		return models.User{}, fmt.Errorf("user search by username failed: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("username", username).Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	if !foundUser.IsActive {
		log.Warn().Str("username", username).Msg("disabled account attempted login")
		return models.User{}, ErrUserDisabled
	}

	if err = a.userRepository.TouchLastLogin(ctx, username, time.Now().UTC()); err != nil {
		// a missing login timestamp is not worth failing the login over
		log.Err(err).Str("username", username).Msg("failed to record login timestamp")
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim and the username as "sub", and expires after
// tokenDuration.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.Username, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// GetUser retrieves the current account record for the given username.
func (a *authService) GetUser(ctx context.Context, username string) (models.User, error) {
	user, err := a.userRepository.FindUserByUsername(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("user search by username failed: %w", err)
	}

	return user, nil
}

// SetActive enables or disables the account. Disabling takes effect on the
// account's next request, not at token expiry.
func (a *authService) SetActive(ctx context.Context, username string, active bool) error {
	log := logger.FromContext(ctx)

	if err := a.userRepository.SetActive(ctx, username, active); err != nil {
		return fmt.Errorf("updating account state failed: %w", err)
	}

	log.Info().Str("username", username).Bool("active", active).Msg("account state updated")
	return nil
}

// SetRole changes the account role. Only the known roles are accepted.
func (a *authService) SetRole(ctx context.Context, username string, role string) error {
	log := logger.FromContext(ctx)

	if role != models.RoleAdmin && role != models.RoleUser {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	if err := a.userRepository.SetRole(ctx, username, role); err != nil {
		return fmt.Errorf("updating account role failed: %w", err)
	}

	log.Info().Str("username", username).Str("role", role).Msg("account role updated")
	return nil
}

// ListUsers returns every account, newest first.
func (a *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := a.userRepository.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users failed: %w", err)
	}

	return users, nil
}

// CreateInvite issues a fresh single-use invite code. A zero ttl produces a
// code that never expires.
func (a *authService) CreateInvite(ctx context.Context, ttl time.Duration) (models.Invite, error) {
	log := logger.FromContext(ctx)

	invite := models.Invite{Code: a.codes.Generate()}
	if ttl > 0 {
		expires := time.Now().UTC().Add(ttl)
		invite.ExpiresAt = &expires
	}

	created, err := a.inviteRepository.CreateInvite(ctx, invite)
	if err != nil {
		log.Err(err).Msg("invite creation ended with error")
		return models.Invite{}, fmt.Errorf("invite creation ended with error: %w", err)
	}

	log.Info().Str("code", created.Code).Msg("invite issued")
	return created, nil
}

// Bootstrap seeds the initial admin account. It acts only when bootstrap
// credentials are configured and the user table is empty; in every other
// case it is a no-op.
func (a *authService) Bootstrap(ctx context.Context) error {
	if a.bootstrapUsername == "" || a.bootstrapPassword == "" {
		return nil
	}

	count, err := a.userRepository.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users failed: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.bootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("password hashing failed: %w", err)
	}

	admin := models.User{
		Username:     a.bootstrapUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	if _, err = a.userRepository.CreateUser(ctx, admin, ""); err != nil {
		// a concurrent instance may have bootstrapped first
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil
		}
		return fmt.Errorf("bootstrap admin creation failed: %w", err)
	}

	a.logger.Info().Str("username", a.bootstrapUsername).Msg("bootstrap admin account created")
	return nil
}
