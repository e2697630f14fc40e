package service

import (
	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/store"
)

type Services struct {
	AuthService AuthService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService: NewAuthService(storages.Users, storages.Invites, cfg.App, logger),
	}
}
