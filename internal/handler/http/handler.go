// Package http implements the HTTP transport of the gateway: the auth and
// admin endpoints, the public character roster with ETag revalidation, and
// the authenticated chat API that streams replies as NDJSON. Tracing,
// request logging, activity tracking and JWT authentication are applied as
// middleware before requests reach the service and relay layers.
package http

import (
	"github.com/cathy-ai/companion-gateway/internal/characters"
	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/relay"
	"github.com/cathy-ai/companion-gateway/internal/service"
	"github.com/cathy-ai/companion-gateway/internal/upstream"
	"github.com/cathy-ai/companion-gateway/internal/watchdog"
)

type Handler struct {
	services   *service.Services
	characters characters.Provider
	relay      *relay.Relay
	models     *upstream.ModelsClient

	// activity is touched on every request so the watchdog can tell an
	// idle deployment from a busy one. May be nil in tests.
	activity *watchdog.Activity

	adminKey  string
	avatarDir string

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	provider characters.Provider,
	chatRelay *relay.Relay,
	modelsClient *upstream.ModelsClient,
	activity *watchdog.Activity,
	cfg *config.StructuredConfig,
	logger *logger.Logger,
) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:   services,
		characters: provider,
		relay:      chatRelay,
		models:     modelsClient,
		activity:   activity,
		adminKey:   cfg.App.AdminKey,
		avatarDir:  cfg.Characters.AvatarDir,
		logger:     logger,
	}
}
