package client

import (
	"context"
	"errors"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/tui"
)

// App ties the gateway adapter and the terminal UI together.
type App struct {
	gateway adapter.GatewayAdapter
	tui     *tui.TUI
	logger  *logger.Logger
}

func NewApp(gateway adapter.GatewayAdapter, ui *tui.TUI, logger *logger.Logger) (*App, error) {
	return &App{gateway: gateway, tui: ui, logger: logger}, nil
}

// Run implements [Client]. It loops authenticate → chat until the user
// quits; logging out returns to the login flow with a fresh token.
func (a *App) Run() error {
	ctx := context.Background()

	for {
		username, role, err := a.tui.LoginFlow(ctx)
		if err != nil {
			if errors.Is(err, tui.ErrUserQuit) {
				return nil
			}
			return err
		}
		a.logger.Info().Str("username", username).Str("role", role).Msg("logged in")

		logout, err := a.tui.MainLoop(ctx)
		if err != nil {
			return err
		}
		if !logout {
			return nil
		}

		// Drop the token before re-entering the login flow.
		a.gateway.SetToken("")
	}
}
