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

// inviteRepository is the SQL-backed implementation of [InviteRepository].
// Consumption of an invite happens inside user registration (see
// [UserRepository.CreateUser]); this repository only issues and looks up
// codes.
type inviteRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewInviteRepository constructs an [InviteRepository] backed by the provided
// database connection and logger.
func NewInviteRepository(db *DB, logger *logger.Logger) InviteRepository {
	logger.Debug().Msg("creating invite repository")
	return &inviteRepository{
		db:     db,
		logger: logger,
	}
}

// CreateInvite stores a freshly issued invite code.
func (r *inviteRepository) CreateInvite(ctx context.Context, invite models.Invite) (models.Invite, error) {
	log := logger.FromContext(ctx)

	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	invite.IsActive = true

	query, args, err := r.db.builder().
		Insert("invites").
		Columns("code", "created_at", "expires_at", "is_active").
		Values(invite.Code, invite.CreatedAt, invite.ExpiresAt, invite.IsActive).
		ToSql()
	if err != nil {
		return models.Invite{}, fmt.Errorf("error building sql query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*inviteRepository.CreateInvite").Msg("error: invite insert failed")
		return models.Invite{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return invite, nil
}

// FindInvite retrieves the invite with the given code or returns
// [ErrInviteNotFound].
func (r *inviteRepository) FindInvite(ctx context.Context, code string) (models.Invite, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select("code", "created_at", "expires_at", "used_by", "used_at", "is_active").
		From("invites").
		Where(sq.Eq{"code": code}).
		ToSql()
	if err != nil {
		return models.Invite{}, fmt.Errorf("error building sql query: %w", err)
	}

	var invite models.Invite
	row := r.db.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&invite.Code, &invite.CreatedAt, &invite.ExpiresAt, &invite.UsedBy, &invite.UsedAt, &invite.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invite{}, ErrInviteNotFound
		}
		log.Err(err).Str("func", "*inviteRepository.FindInvite").Msg("error: scanning invite row")
		return models.Invite{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return invite, nil
}
