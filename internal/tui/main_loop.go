package tui

import (
	"context"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	tea "github.com/charmbracelet/bubbletea"
)

type mainScreen int

const (
	screenPicker mainScreen = iota
	screenChat
)

// mainLoopModel is the post-login shell. It owns the character picker and
// the chat screen and switches between them on session lifecycle messages.
type mainLoopModel struct {
	ctx     context.Context
	gateway adapter.GatewayAdapter

	screen mainScreen
	picker *pickerModel
	chat   *chatModel

	width  int
	height int

	logout     bool
	quitByUser bool
}

func newMainLoopModel(ctx context.Context, gateway adapter.GatewayAdapter) mainLoopModel {
	return mainLoopModel{
		ctx:     ctx,
		gateway: gateway,
		picker:  newPickerModel(ctx, gateway),
	}
}

func (m mainLoopModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m mainLoopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitByUser = true
			return m, tea.Quit
		case "q":
			if m.screen == screenPicker && m.picker.phase == phaseCharacters {
				m.quitByUser = true
				return m, tea.Quit
			}
		case "l":
			if m.screen == screenPicker && m.picker.phase == phaseCharacters {
				m.logout = true
				return m, tea.Quit
			}
		}

	case sessionStartedMsg:
		if msg.err == nil {
			m.screen = screenChat
			m.chat = newChatModel(m.ctx, m.gateway, msg)
			cmd := m.chat.Init()
			if m.width > 0 {
				resize := tea.WindowSizeMsg{Width: m.width, Height: m.height}
				return m, tea.Batch(cmd, func() tea.Msg { return resize })
			}
			return m, cmd
		}
		// Failures fall through to the picker so it can show the error.

	case sessionEndedMsg:
		// Even a failed close drops back to the picker; the session is gone
		// from the client's point of view either way.
		m.screen = screenPicker
		m.chat = nil
		m.picker = newPickerModel(m.ctx, m.gateway)
		return m, m.picker.Init()
	}

	switch m.screen {
	case screenChat:
		if m.chat == nil {
			return m, nil
		}
		updated, cmd := m.chat.Update(msg)
		m.chat = updated.(*chatModel)
		return m, cmd
	default:
		updated, cmd := m.picker.Update(msg)
		m.picker = updated.(*pickerModel)
		return m, cmd
	}
}

func (m mainLoopModel) View() string {
	if m.screen == screenChat && m.chat != nil {
		return m.chat.View()
	}
	return m.picker.View()
}
