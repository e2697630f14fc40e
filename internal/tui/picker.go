package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/cathy-ai/companion-gateway/models"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultModelOption = "(character default)"

type pickerPhase int

const (
	phaseCharacters pickerPhase = iota
	phaseModels
)

// pickerModel lets the user choose a character and, optionally, override the
// model the character is configured with. Selecting a model dispatches the
// async start-session command; the resulting [sessionStartedMsg] is handled
// by mainLoopModel, which switches to the chat screen.
type pickerModel struct {
	ctx     context.Context
	gateway adapter.GatewayAdapter

	phase      pickerPhase
	characters []models.CharacterSummary
	idx        int
	modelNames []string
	modelIdx   int

	loading  bool
	starting bool
	spinner  spinner.Model
	errMsg   string
}

func newPickerModel(ctx context.Context, gateway adapter.GatewayAdapter) *pickerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return &pickerModel{
		ctx:     ctx,
		gateway: gateway,
		spinner: s,
		loading: true,
	}
}

func (m *pickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.cmdLoadCharacters())
}

func (m *pickerModel) current() (models.CharacterSummary, bool) {
	if len(m.characters) == 0 || m.idx < 0 || m.idx >= len(m.characters) {
		return models.CharacterSummary{}, false
	}
	return m.characters[m.idx], true
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case charactersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = humanizeGatewayError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.characters = msg.characters
		return m, nil

	case modelsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// The chat still works with the character default, so a model
			// listing failure only collapses the choice.
			m.errMsg = humanizeGatewayError(msg.err)
			m.modelNames = []string{defaultModelOption}
		} else {
			m.modelNames = append([]string{defaultModelOption}, msg.models...)
		}
		m.modelIdx = 0
		m.phase = phaseModels
		return m, nil

	case sessionStartedMsg:
		// Only the failure case lands here; a started session switches the
		// screen in mainLoopModel.
		m.starting = false
		if msg.err != nil {
			m.errMsg = humanizeGatewayError(msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.phase == phaseModels {
			if m.modelIdx > 0 {
				m.modelIdx--
			}
		} else if m.idx > 0 {
			m.idx--
		}

	case "down", "j":
		if m.phase == phaseModels {
			if m.modelIdx < len(m.modelNames)-1 {
				m.modelIdx++
			}
		} else if m.idx < len(m.characters)-1 {
			m.idx++
		}

	case "esc":
		if m.phase == phaseModels {
			m.phase = phaseCharacters
			m.errMsg = ""
		}

	case "r":
		if m.phase == phaseCharacters && !m.loading {
			m.loading = true
			m.errMsg = ""
			return m, tea.Batch(m.spinner.Tick, m.cmdLoadCharacters())
		}

	case "enter":
		if m.loading || m.starting {
			return m, nil
		}
		if m.phase == phaseCharacters {
			if _, ok := m.current(); !ok {
				return m, nil
			}
			m.loading = true
			m.errMsg = ""
			return m, tea.Batch(m.spinner.Tick, m.cmdLoadModels())
		}

		character, ok := m.current()
		if !ok {
			return m, nil
		}
		m.starting = true
		m.errMsg = ""
		return m, m.cmdStartSession(character.ID, m.selectedModel())
	}

	return m, nil
}

// selectedModel returns the override to send with each turn, or an empty
// string for the character default.
func (m *pickerModel) selectedModel() string {
	if m.modelIdx <= 0 || m.modelIdx >= len(m.modelNames) {
		return ""
	}
	return m.modelNames[m.modelIdx]
}

func (m *pickerModel) View() string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...\n")

	case m.phase == phaseModels:
		character, _ := m.current()
		b.WriteString("Character: ")
		b.WriteString(character.Name)
		b.WriteString("\n\n")
		for i, name := range m.modelNames {
			cursor := "  "
			if i == m.modelIdx {
				cursor = "> "
			}
			b.WriteString(cursor)
			b.WriteString(name)
			b.WriteString("\n")
		}

	case len(m.characters) == 0:
		b.WriteString("No characters available\n")

	default:
		for i, character := range m.characters {
			cursor := "  "
			if i == m.idx {
				cursor = "> "
			}
			label := character.Name
			if character.Nickname != "" && character.Nickname != character.Name {
				label = fmt.Sprintf("%s (%s)", character.Name, character.Nickname)
			}
			b.WriteString(cursor)
			b.WriteString(fitText(label, 48))
			b.WriteString("\n")
		}
	}

	if m.starting {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Starting session...\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	hotKeys := "enter: choose │ ↑/↓: move │ r: reload │ l: log out │ q: quit"
	if m.phase == phaseModels {
		hotKeys = "enter: start chat │ ↑/↓: move │ esc: back"
	}
	return renderPage("CHOOSE A CHARACTER", strings.TrimRight(b.String(), "\n"), hotKeys)
}

func (m *pickerModel) cmdLoadCharacters() tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway
	return func() tea.Msg {
		characters, err := gateway.Characters(ctx)
		return charactersLoadedMsg{characters: characters, err: err}
	}
}

func (m *pickerModel) cmdLoadModels() tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway
	return func() tea.Msg {
		names, err := gateway.Models(ctx)
		return modelsLoadedMsg{models: names, err: err}
	}
}

func (m *pickerModel) cmdStartSession(characterID, model string) tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway
	return func() tea.Msg {
		session, err := gateway.StartSession(ctx, characterID)
		if err != nil {
			return sessionStartedMsg{err: err}
		}
		return sessionStartedMsg{session: session, model: model}
	}
}
