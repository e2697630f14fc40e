package http

import (
	"errors"
	"net/http"

	"github.com/cathy-ai/companion-gateway/internal/characters"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/relay"
	"github.com/cathy-ai/companion-gateway/internal/service"
	"github.com/cathy-ai/companion-gateway/internal/store"
	"github.com/cathy-ai/companion-gateway/internal/upstream"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrUserDisabled:            http.StatusForbidden,
	service.ErrRegistrationDisabled:    http.StatusForbidden,
	service.ErrInviteRequired:          http.StatusBadRequest,
	service.ErrUnknownRole:             http.StatusBadRequest,

	store.ErrUsernameTaken:  http.StatusConflict,
	store.ErrUserNotFound:   http.StatusNotFound,
	store.ErrInviteNotFound: http.StatusBadRequest,
	store.ErrInviteUsed:     http.StatusBadRequest,
	store.ErrInviteExpired:  http.StatusBadRequest,

	characters.ErrCharacterNotFound: http.StatusNotFound,
	characters.ErrSourceUnavailable: http.StatusBadGateway,

	relay.ErrSessionNotFound: http.StatusNotFound,
	relay.ErrNotSessionOwner: http.StatusForbidden,
	relay.ErrTurnInProgress:  http.StatusConflict,
	relay.ErrNoModel:         http.StatusBadRequest,

	upstream.ErrChatNotConfigured:   http.StatusServiceUnavailable,
	upstream.ErrModelsNotConfigured: http.StatusServiceUnavailable,
	upstream.ErrChatUpstream:        http.StatusBadGateway,
	upstream.ErrModelsUpstream:      http.StatusBadGateway,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// errorResponse writes err as a plain-text error with the mapped status.
// Unmapped errors collapse to a generic 500 so internal details never reach
// the client; the full error is logged either way.
func errorResponse(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logger.FromRequest(r)
	log.Err(err).Msg(msg)

	status := statusFromError(err)
	text := err.Error()
	if status == http.StatusInternalServerError {
		text = http.StatusText(status)
	}
	http.Error(w, text, status)
}

// okResponse writes the generic {"ok": true} success envelope.
func okResponse(w http.ResponseWriter, r *http.Request, message string) {
	if _, err := utils.WriteJSON(w, models.OKResponse{OK: true, Message: message}, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing response failed")
	}
}
