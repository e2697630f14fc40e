package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/service"
	"github.com/cathy-ai/companion-gateway/internal/store"
	"github.com/cathy-ai/companion-gateway/internal/utils"
)

// auth enforces JWT bearer authentication on the chat API.
//
// It extracts the bearer token from the "Authorization" header, validates
// it through [service.AuthService.ParseToken], then re-reads the account
// record so a disabled account is locked out immediately instead of at
// token expiry. On success the username and role are stored in the request
// context under [utils.UsernameCtxKey] and [utils.RoleCtxKey].
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()

		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			log.Err(err).Msg("token rejected")
			http.Error(w, service.ErrTokenIsExpiredOrInvalid.Error(), http.StatusUnauthorized)
			return
		}

		user, err := h.services.AuthService.GetUser(ctx, token.Username)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			log.Err(err).Str("username", token.Username).Msg("token for unknown account")
			http.Error(w, service.ErrTokenIsExpiredOrInvalid.Error(), http.StatusUnauthorized)
			return
		case err != nil:
			log.Err(err).Msg("account lookup failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		case !user.IsActive:
			log.Warn().Str("username", user.Username).Msg("disabled account rejected")
			http.Error(w, service.ErrUserDisabled.Error(), http.StatusForbidden)
			return
		}

		ctx = context.WithValue(ctx, utils.UsernameCtxKey, user.Username)
		ctx = context.WithValue(ctx, utils.RoleCtxKey, user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
