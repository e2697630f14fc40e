package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withActivity)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/health", h.health)
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Get("/characters", h.listCharacters)
		r.Get("/characters/{id}", h.getCharacter)
		r.Get("/avatars/{filename}", h.avatar)
	})

	// admin routes gated by the x-admin-key header
	router.Group(func(r chi.Router) {
		r.Use(h.adminOnly)
		r.Post("/auth/admin/invite", h.createInvite)
		r.Post("/auth/admin/disable", h.disableUser)
		r.Post("/auth/admin/enable", h.enableUser)
		r.Post("/auth/admin/set_role", h.setRole)
		r.Get("/auth/admin/users", h.listUsers)
	})

	// authenticated chat API
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/models", h.listModels)
		r.Post("/api/chat/session", h.startSession)
		r.Post("/api/chat/{session_id}", h.chatTurn)
		r.Delete("/api/chat/{session_id}", h.endSession)
		r.Get("/api/chat/whoami", h.whoami)
	})

	return router
}
