package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It handles account creation (optionally consuming an invite in the same
// transaction), lookup, and the enable/disable lifecycle.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record. When inviteCode is non-empty, the
// invite is validated and consumed inside the same transaction as the user
// INSERT: the consuming UPDATE is guarded by is_active, so concurrent
// registrations with one code produce exactly one winner.
//
// Error handling:
//   - unique violation on the username → [ErrUsernameTaken].
//   - unknown invite → [ErrInviteNotFound]; expired → [ErrInviteExpired];
//     already consumed (or lost the race) → [ErrInviteUsed].
//   - any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User, inviteCode string) (models.User, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: failed to begin transaction")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if inviteCode != "" {
		if err = r.consumeInvite(ctx, tx, inviteCode, user.Username, now); err != nil {
			return models.User{}, err
		}
	}

	user.CreatedAt = now
	user.IsActive = true
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query, args, err := r.db.builder().
		Insert(user.TableName()).
		Columns("username", "pw_hash", "role", "is_active", "created_at").
		Values(user.Username, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("error building sql query: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: user insert failed")

		if r.db.classify.IsUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: commit failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return user, nil
}

// consumeInvite validates the invite inside tx and marks it used. The UPDATE
// carries an is_active guard; zero affected rows means another registration
// won the race (or the invite was already used).
func (r *userRepository) consumeInvite(ctx context.Context, tx *sql.Tx, code, username string, now time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select("code", "created_at", "expires_at", "used_by", "used_at", "is_active").
		From("invites").
		Where(sq.Eq{"code": code}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building sql query: %w", err)
	}

	var invite models.Invite
	row := tx.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&invite.Code, &invite.CreatedAt, &invite.ExpiresAt, &invite.UsedBy, &invite.UsedAt, &invite.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInviteNotFound
		}
		log.Err(err).Str("func", "*userRepository.consumeInvite").Msg("error: scanning invite row")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if !invite.IsActive {
		return ErrInviteUsed
	}
	if invite.Expired(now) {
		return ErrInviteExpired
	}

	query, args, err = r.db.builder().
		Update("invites").
		Set("used_by", username).
		Set("used_at", now).
		Set("is_active", false).
		Where(sq.Eq{"code": code, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building sql query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.consumeInvite").Msg("error: invite update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		// lost the race to a concurrent registration
		return ErrInviteUsed
	}

	return nil
}

// FindUserByUsername retrieves the account with the given username or
// returns [ErrUserNotFound].
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select("username", "pw_hash", "role", "is_active", "created_at", "last_login_at").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("error building sql query: %w", err)
	}

	var user models.User
	row := r.db.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&user.Username, &user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt, &user.LastLoginAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByUsername").Msg("error: scanning user row")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return user, nil
}

// SetActive flips the is_active flag on the account.
func (r *userRepository) SetActive(ctx context.Context, username string, active bool) error {
	return r.updateUserColumn(ctx, username, "is_active", active)
}

// SetRole updates the role column on the account.
func (r *userRepository) SetRole(ctx context.Context, username string, role string) error {
	return r.updateUserColumn(ctx, username, "role", role)
}

// TouchLastLogin records the timestamp of a successful credential check.
func (r *userRepository) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	return r.updateUserColumn(ctx, username, "last_login_at", at)
}

func (r *userRepository) updateUserColumn(ctx context.Context, username, column string, value any) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Update("users").
		Set(column, value).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building sql query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.updateUserColumn").Str("column", column).Msg("error: user update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListUsers returns every account ordered by creation time, newest first.
func (r *userRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select("username", "pw_hash", "role", "is_active", "created_at", "last_login_at").
		From("users").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building sql query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err = rows.Scan(&user.Username, &user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt, &user.LastLoginAt); err != nil {
			log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error: scanning user rows")
			return nil, fmt.Errorf("unexpected DB error: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return users, nil
}

// CountUsers returns the total number of accounts. Used by the bootstrap
// step to decide whether the initial admin should be created.
func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	query, args, err := r.db.builder().
		Select("COUNT(*)").
		From("users").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building sql query: %w", err)
	}

	var count int
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return count, nil
}
