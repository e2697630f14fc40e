package main

import (
	"fmt"
	"os"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/cathy-ai/companion-gateway/internal/client"
	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/tui"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("chat-client")
	cfg, err := config.GetClientConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	gateway, err := adapter.NewHTTPGatewayAdapter(*cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create gateway adapter")
	}

	ui, err := tui.New(gateway, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(gateway, ui, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
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
