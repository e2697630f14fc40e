package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

func (h *Handler) listCharacters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	summaries, err := h.characters.List(ctx)
	if err != nil {
		errorResponse(w, r, err, "listing characters failed")
		return
	}

	payload, err := json.Marshal(models.CharactersResponse{Characters: summaries})
	if err != nil {
		log.Err(err).Msg("marshaling roster failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeCacheable(w, r, payload, "application/json")
}

func (h *Handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	view := models.ViewPublic
	if r.URL.Query().Get("view") == string(models.ViewPrivate) {
		// Prompt and background text is operator-only material.
		if !h.validAdminKey(r) {
			log.Warn().Msg("private character view without admin key")
			http.Error(w, ErrInvalidAdminKey.Error(), http.StatusForbidden)
			return
		}
		view = models.ViewPrivate
	}

	character, err := h.characters.Get(ctx, chi.URLParam(r, "id"), view)
	if err != nil {
		errorResponse(w, r, err, "resolving character failed")
		return
	}

	payload, err := json.Marshal(character)
	if err != nil {
		log.Err(err).Msg("marshaling character failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeCacheable(w, r, payload, "application/json")
}

func (h *Handler) avatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	filename := chi.URLParam(r, "filename")
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		log.Warn().Str("filename", filename).Msg("avatar path rejected")
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	payload, err := os.ReadFile(filepath.Join(h.avatarDir, filename))
	if err != nil {
		log.Err(err).Str("filename", filename).Msg("avatar not readable")
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	writeCacheable(w, r, payload, contentType)
}

// writeCacheable writes payload with a strong ETag, answering a matching
// If-None-Match with 304 and no body. The 304 path never re-reads or
// re-encodes anything; it only compares the digest.
func writeCacheable(w http.ResponseWriter, r *http.Request, payload []byte, contentType string) {
	etag := utils.ETag(payload)
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(payload); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing response failed")
	}
}
