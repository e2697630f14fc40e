package tui

import (
	"context"
	"strings"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// RegisterModel is the Bubble Tea model for the registration screen. It
// renders four text inputs (username, password, password confirmation and
// invite code) and dispatches an async registration command on form
// submission. On success a [RegisterResult] message is produced; the model
// then resets the form and navigates back to the menu, passing a
// [RegisterSuccessNotice] payload.
type RegisterModel struct {
	ctx     context.Context
	gateway adapter.GatewayAdapter

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

// NewRegisterModel creates a [RegisterModel] with pre-configured text inputs.
// The invite code field may be left empty when the gateway runs with open
// registration.
func NewRegisterModel(ctx context.Context, gateway adapter.GatewayAdapter) *RegisterModel {
	fields := make([]textinput.Model, 4)

	fields[0] = textinput.New()
	fields[0].Placeholder = "username"
	fields[0].CharLimit = 64
	fields[0].Width = 40
	fields[0].Focus()

	fields[1] = textinput.New()
	fields[1].Placeholder = "password"
	fields[1].CharLimit = 72
	fields[1].EchoMode = textinput.EchoPassword
	fields[1].EchoCharacter = '*'
	fields[1].Width = 40

	fields[2] = textinput.New()
	fields[2].Placeholder = "repeat password"
	fields[2].CharLimit = 72
	fields[2].EchoMode = textinput.EchoPassword
	fields[2].EchoCharacter = '*'
	fields[2].Width = 40

	fields[3] = textinput.New()
	fields[3].Placeholder = "invite code (if you have one)"
	fields[3].Width = 40

	return &RegisterModel{
		ctx:     ctx,
		gateway: gateway,
		inputs:  fields,
	}
}

// Init implements [tea.Model]. Starts the cursor-blink animation.
func (m *RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [RegisterResult] — clears submitting state; on error, populates errMsg;
//     on success, resets the form and navigates to the menu.
//   - esc              — cancels and navigates back to the menu.
//   - tab/shift+tab    — moves focus between inputs.
//   - enter            — validates inputs (passwords must match) and
//     dispatches the async registration command.
//
// All other key events are forwarded to the focused input widget.
func (m *RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(RegisterResult); ok {
		m.submitting = false
		if result.Err != nil {
			m.errMsg = humanizeGatewayError(result.Err)
			return m, nil
		}

		m.errMsg = ""
		m.resetForm()
		return m, func() tea.Msg {
			return NavigateTo{
				Page:    "menu",
				Payload: RegisterSuccessNotice{Username: result.Username},
			}
		}
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.submitting = false
			m.errMsg = ""
			return m, func() tea.Msg { return NavigateTo{Page: "menu"} }
		case "tab":
			m.focusNext()
			return m, nil
		case "shift+tab":
			m.focusPrev()
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}

			username := strings.TrimSpace(m.inputs[0].Value())
			pass := m.inputs[1].Value()
			repeat := m.inputs[2].Value()
			invite := strings.TrimSpace(m.inputs[3].Value())

			if username == "" || pass == "" {
				m.errMsg = "Username and password are required"
				return m, nil
			}
			if pass != repeat {
				m.errMsg = "Passwords do not match"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdRegister(username, pass, invite)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements [tea.Model].
func (m *RegisterModel) View() string {
	var b strings.Builder
	b.WriteString("Username         │ [")
	b.WriteString(m.inputs[0].View())
	b.WriteString("]\n")
	b.WriteString("Password         │ [")
	b.WriteString(m.inputs[1].View())
	b.WriteString("]\n")
	b.WriteString("Repeat password  │ [")
	b.WriteString(m.inputs[2].View())
	b.WriteString("]\n")
	b.WriteString("Invite code      │ [")
	b.WriteString(m.inputs[3].View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Registering...]\n")
	} else {
		b.WriteString("\n[Register]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("REGISTER", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *RegisterModel) cmdRegister(username, pass, invite string) tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway

	return func() tea.Msg {
		err := gateway.Register(ctx, username, pass, invite)
		return RegisterResult{
			Err:      err,
			Username: username,
		}
	}
}

func (m *RegisterModel) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = 0
	m.inputs[m.focus].Focus()
}

func (m *RegisterModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *RegisterModel) focusPrev() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}
