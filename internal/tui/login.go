package tui

import (
	"context"
	"strings"

	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginModel is the Bubble Tea model for the login screen. It renders two
// text inputs (username and password) and dispatches an async login command
// on form submission. On success a [LoginResult] message is produced and
// handled by [RootModel] to finish the authentication flow.
type LoginModel struct {
	ctx     context.Context
	gateway adapter.GatewayAdapter

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

// NewLoginModel creates a [LoginModel] with pre-configured username and
// password inputs. The username field receives focus immediately; the
// password field uses masked echo.
func NewLoginModel(ctx context.Context, gateway adapter.GatewayAdapter) *LoginModel {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "username"
	usernameInput.CharLimit = 64
	usernameInput.Width = 40
	usernameInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 72
	passwordInput.Width = 40
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '*'

	return &LoginModel{
		ctx:     ctx,
		gateway: gateway,
		inputs:  []textinput.Model{usernameInput, passwordInput},
	}
}

// Init implements [tea.Model]. Starts the cursor-blink animation.
func (m *LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [LoginResult] — clears submitting state; on error, populates errMsg.
//   - esc           — cancels and navigates back to the menu.
//   - tab/shift+tab — moves focus between inputs.
//   - enter         — validates inputs and dispatches the async login command.
//
// All other key events are forwarded to the focused input widget.
func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(LoginResult); ok {
		m.submitting = false
		if result.Err != nil {
			m.errMsg = humanizeGatewayError(result.Err)
		}
		return m, nil
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
			if username == "" || pass == "" {
				m.errMsg = "Username and password are required"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdLogin(username, pass)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements [tea.Model].
func (m *LoginModel) View() string {
	var b strings.Builder
	b.WriteString("Username │ [")
	b.WriteString(m.inputs[0].View())
	b.WriteString("]\n")
	b.WriteString("Password │ [")
	b.WriteString(m.inputs[1].View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Logging in...]\n")
	} else {
		b.WriteString("\n[Log in]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("LOG IN", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *LoginModel) cmdLogin(username, pass string) tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway

	return func() tea.Msg {
		role, err := gateway.Login(ctx, username, pass)
		return LoginResult{
			Err:      err,
			Username: username,
			Role:     role,
		}
	}
}

func (m *LoginModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *LoginModel) focusPrev() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}
