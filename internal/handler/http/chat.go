package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cathy-ai/companion-gateway/internal/app"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

func (h *Handler) listModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	names, err := h.models.Fetch(ctx)
	if err != nil {
		errorResponse(w, r, err, "fetching models failed")
		return
	}

	if _, err := utils.WriteJSON(w, models.ModelsResponse{Models: names}, http.StatusOK); err != nil {
		log.Err(err).Msg("writing response failed")
	}
}

type startSessionRequest struct {
	CharID string `json:"char_id"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	session, err := h.relay.StartSession(ctx, username, req.CharID)
	if err != nil {
		errorResponse(w, r, err, "starting session failed")
		return
	}

	response := models.SessionResponse{
		SessionID:     session.ID,
		Character:     session.Character.Public(),
		Greeting:      session.Character.Greeting,
		PreferredName: session.Identity.PreferredName,
	}
	if _, err := utils.WriteJSON(w, response, http.StatusOK); err != nil {
		log.Err(err).Msg("writing response failed")
	}
}

type turnRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// chatTurn runs one conversation turn and streams the reply as NDJSON:
// one {"message":{...},"done":false} object per delta, then a terminal
// object with done=true carrying the emotion annotation when available.
// Errors before the first delta map to plain HTTP statuses; errors after
// streaming has begun are reported in the terminal object instead, since
// the 200 header is already on the wire.
func (h *Handler) chatTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	session, err := h.relay.GetSession(chi.URLParam(r, "session_id"), username)
	if err != nil {
		errorResponse(w, r, err, "session lookup failed")
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)
	streaming := false

	emit := func(delta string) error {
		if !streaming {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Header().Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			streaming = true
		}

		chunk := models.StreamChunk{
			Message: &models.ChatMessage{Role: models.RoleAssistant, Content: delta},
		}
		if err := encoder.Encode(chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	_, emotion, err := h.relay.Turn(ctx, session, req.Text, req.Model, emit)
	if err != nil {
		if !streaming {
			errorResponse(w, r, err, "turn failed")
			return
		}

		// The status line is gone; the best we can do is a terminal
		// object naming the failure.
		log.Err(err).Msg("turn failed mid-stream")
		if encodeErr := encoder.Encode(models.StreamChunk{Done: true, Error: err.Error()}); encodeErr != nil {
			log.Err(encodeErr).Msg("writing terminal chunk failed")
		}
		return
	}

	if !streaming {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
	}
	if err := encoder.Encode(models.StreamChunk{Done: true, Emotion: emotion}); err != nil {
		log.Err(err).Msg("writing terminal chunk failed")
	}
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	if _, err := h.relay.GetSession(sessionID, username); err != nil {
		errorResponse(w, r, err, "session lookup failed")
		return
	}

	h.relay.EndSession(sessionID)
	okResponse(w, r, app.MsgSessionClosed)
}

func (h *Handler) whoami(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	externalUserID, identity := h.relay.Whoami(ctx, username)

	response := models.WhoamiResponse{
		ExternalUserID: externalUserID,
		PersonID:       identity.PersonID,
		PreferredName:  identity.PreferredName,
	}
	if _, err := utils.WriteJSON(w, response, http.StatusOK); err != nil {
		log.Err(err).Msg("writing response failed")
	}
}
