package main

import (
	"context"
	"fmt"

	"github.com/cathy-ai/companion-gateway/internal/characters"
	"github.com/cathy-ai/companion-gateway/internal/config"
	httphandler "github.com/cathy-ai/companion-gateway/internal/handler/http"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/relay"
	"github.com/cathy-ai/companion-gateway/internal/server"
	"github.com/cathy-ai/companion-gateway/internal/service"
	"github.com/cathy-ai/companion-gateway/internal/sessionlog"
	"github.com/cathy-ai/companion-gateway/internal/store"
	"github.com/cathy-ai/companion-gateway/internal/upstream"
	"github.com/cathy-ai/companion-gateway/internal/watchdog"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("gateway")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening database")
	}

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error migrating database")
	}

	storages := store.NewStorages(db, log)
	services := service.NewServices(storages, *cfg, log)

	if err = services.AuthService.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("error bootstrapping admin account")
	}

	provider := characters.NewProvider(cfg.Characters, log)
	clients := upstream.NewClients(cfg.Upstream, log)
	appender := sessionlog.NewAppender(cfg.Storage.StateDir, log)
	chatRelay := relay.New(clients, provider, appender, log)
	activity := watchdog.NewActivity(cfg.Storage.StateDir, log)

	handler := httphandler.NewHandler(services, provider, chatRelay, clients.Models, activity, cfg, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
