// Package server runs the gateway's HTTP transport: startup, signal
// handling, and graceful shutdown.
package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cathy-ai/companion-gateway/internal/config"
	httphandler "github.com/cathy-ai/companion-gateway/internal/handler/http"
	"github.com/cathy-ai/companion-gateway/internal/logger"
)

// Server is the lifecycle contract of a transport server: RunServer blocks
// until shutdown is requested, Shutdown releases resources.
type Server interface {
	RunServer()
	Shutdown()
}

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handler *httphandler.Handler, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handler.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	idleConnectionsClosed := make(chan struct{})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()
		s.Shutdown()
		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}
