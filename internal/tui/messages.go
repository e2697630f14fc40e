package tui

import (
	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/cathy-ai/companion-gateway/models"
	tea "github.com/charmbracelet/bubbletea"
)

// NavigateTo switches the active page of [RootModel]. Payload, when set, is
// delivered to the target page as its first message instead of Init.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

// LoginResult finishes the authentication flow on success.
type LoginResult struct {
	Err      error
	Username string
	Role     string
}

// RegisterResult reports the outcome of a registration attempt.
type RegisterResult struct {
	Err      error
	Username string
}

// RegisterSuccessNotice is shown on the menu after a successful registration.
type RegisterSuccessNotice struct {
	Username string
}

type charactersLoadedMsg struct {
	characters []models.CharacterSummary
	err        error
}

type modelsLoadedMsg struct {
	models []string
	err    error
}

type sessionStartedMsg struct {
	session models.SessionResponse
	// model is the per-turn override chosen on the picker, empty for the
	// character default.
	model string
	err   error
}

type turnDeltaMsg struct {
	delta string
}

type turnDoneMsg struct {
	result adapter.TurnResult
	err    error
}

type sessionEndedMsg struct {
	err error
}

type copiedMsg struct{}

type clearStatusMsg struct{}
