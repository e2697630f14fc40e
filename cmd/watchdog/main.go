package main

import (
	"net/http"
	"os"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/watchdog"
	"github.com/cathy-ai/companion-gateway/internal/workers"
)

func main() {
	log := logger.NewLogger("watchdog")

	cfg, err := config.GetWatchdogConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	activity := watchdog.NewActivity(cfg.StateDir, log)
	docker := watchdog.NewDockerClient(cfg.DockerSocket, log)
	monitor := watchdog.NewMonitor(activity, docker, *cfg, log)

	workers.NewWorkers(monitor).Run()

	if cfg.WakeAddress == "" {
		log.Info().Msg("wake listener disabled, monitoring only")
		select {}
	}

	wake := watchdog.NewWakeHandler(docker, *cfg, log)
	srv := &http.Server{
		Addr:              cfg.WakeAddress,
		Handler:           wake,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("address", cfg.WakeAddress).Msg("wake listener running")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("wake listener failed")
	}
}
