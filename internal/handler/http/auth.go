package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cathy-ai/companion-gateway/internal/app"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	okResponse(w, r, "")
}

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	user, err := h.services.AuthService.Register(ctx, req.Username, req.Password, req.InviteCode)
	if err != nil {
		errorResponse(w, r, err, app.MsgRegistrationRejected)
		return
	}

	log.Info().Str("username", user.Username).Msg("account registered")
	okResponse(w, r, app.MsgRegistered)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	user, err := h.services.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		errorResponse(w, r, err, app.MsgLoginRejected)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, user)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user logged in")

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	if _, err := utils.WriteJSON(w, models.LoginResponse{OK: true, Role: user.Role}, http.StatusOK); err != nil {
		log.Err(err).Msg("writing response failed")
	}
}
