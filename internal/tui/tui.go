// Package tui implements the terminal chat client on top of Bubble Tea.
//
// The flow runs in two programs: LoginFlow routes between the menu, login
// and register pages until an account is authenticated, then MainLoop owns
// the character picker and the chat screen. Both return to the caller in
// internal/client, which decides whether to re-enter the flow on logout.
package tui

import (
	"context"
	"errors"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrUserQuit reports that the user left the program from the login flow.
var ErrUserQuit = errors.New("user quit")

type TUI struct {
	gateway adapter.GatewayAdapter
	logger  *logger.Logger
}

func New(gateway adapter.GatewayAdapter, logger *logger.Logger) (*TUI, error) {
	return &TUI{gateway: gateway, logger: logger}, nil
}

// LoginFlow runs the authentication program and blocks until the user is
// logged in or quits. On success the adapter holds the bearer token and the
// authenticated username and role are returned.
func (t *TUI) LoginFlow(ctx context.Context) (username, role string, err error) {
	pages := map[string]tea.Model{
		"menu":     NewMenuModel(),
		"login":    NewLoginModel(ctx, t.gateway),
		"register": NewRegisterModel(ctx, t.gateway),
	}

	root := NewRootModel(pages, "menu")
	finalModel, runErr := tea.NewProgram(root, tea.WithAltScreen()).Run()
	if runErr != nil {
		return "", "", runErr
	}

	result, ok := finalModel.(RootModel)
	if !ok {
		return "", "", tea.ErrProgramKilled
	}
	if result.quitByUser {
		return "", "", ErrUserQuit
	}

	return result.resultUsername, result.resultRole, nil
}

// MainLoop runs the picker/chat program and blocks until the user quits or
// logs out. Returns logout=true when the caller should restart LoginFlow.
func (t *TUI) MainLoop(ctx context.Context) (logout bool, err error) {
	model := newMainLoopModel(ctx, t.gateway)
	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if runErr != nil {
		return false, runErr
	}

	result, ok := finalModel.(mainLoopModel)
	if !ok {
		return false, tea.ErrProgramKilled
	}
	return result.logout, nil
}
