package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/app"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

type inviteRequest struct {
	// ExpiresHours is optional; zero means the invite never expires.
	ExpiresHours int `json:"expires_hours"`
}

func (h *Handler) createInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	ttl := time.Duration(req.ExpiresHours) * time.Hour
	invite, err := h.services.AuthService.CreateInvite(ctx, ttl)
	if err != nil {
		errorResponse(w, r, err, "creating invite failed")
		return
	}

	log.Info().Str("code", invite.Code).Msg("invite created")
	if _, err := utils.WriteJSON(w, models.InviteResponse{OK: true, Code: invite.Code}, http.StatusOK); err != nil {
		log.Err(err).Msg("writing response failed")
	}
}

type userActionRequest struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

func (h *Handler) disableUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *Handler) enableUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req userActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.SetActive(ctx, req.Username, active); err != nil {
		errorResponse(w, r, err, "changing account state failed")
		return
	}

	log.Info().Str("username", req.Username).Bool("active", active).Msg("account state changed")
	okResponse(w, r, "")
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req userActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.SetRole(ctx, req.Username, req.Role); err != nil {
		errorResponse(w, r, err, "changing account role failed")
		return
	}

	log.Info().Str("username", req.Username).Str("role", req.Role).Msg("account role changed")
	okResponse(w, r, "")
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	users, err := h.services.AuthService.ListUsers(ctx)
	if err != nil {
		errorResponse(w, r, err, "listing users failed")
		return
	}

	if _, err := utils.WriteJSON(w, models.UsersResponse{OK: true, Users: users}, http.StatusOK); err != nil {
		log.Err(err).Msg("writing response failed")
	}
}
