package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/cathy-ai/companion-gateway/internal/adapter"
	"github.com/cathy-ai/companion-gateway/models"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	chatDefaultWidth  = 80
	chatDefaultHeight = 24
	chatInputHeight   = 3
)

type chatLine struct {
	speaker string
	text    string
	// emotion annotates a finished assistant reply, empty otherwise.
	emotion string
}

// chatModel is the conversation screen. The transcript lives in a viewport,
// the composer in a textarea below it. A sent turn streams back through a
// message channel: the worker goroutine created by cmdSendTurn feeds
// turnDeltaMsg values into it and closes with a turnDoneMsg, while
// cmdAwaitStream pumps them into the Bubble Tea loop one at a time.
type chatModel struct {
	ctx     context.Context
	gateway adapter.GatewayAdapter

	session models.SessionResponse
	// model overrides the character's configured model for every turn when
	// set on the picker.
	model string
	label string

	viewport viewport.Model
	input    textarea.Model
	ready    bool

	transcript []chatLine
	streaming  bool
	partial    string
	streamCh   chan tea.Msg

	status string
	errMsg string
	ending bool
}

func newChatModel(ctx context.Context, gateway adapter.GatewayAdapter, started sessionStartedMsg) *chatModel {
	input := textarea.New()
	input.Placeholder = "Say something..."
	input.CharLimit = 4000
	input.SetHeight(chatInputHeight)
	input.ShowLineNumbers = false
	input.Focus()

	vp := viewport.New(chatDefaultWidth, chatDefaultHeight-chatInputHeight-6)

	m := &chatModel{
		ctx:      ctx,
		gateway:  gateway,
		session:  started.session,
		model:    started.model,
		label:    started.session.Character.Label(),
		viewport: vp,
		input:    input,
	}

	if greeting := started.session.Greeting; greeting != "" {
		m.transcript = append(m.transcript, chatLine{speaker: m.label, text: greeting})
	}
	m.refreshViewport()
	return m
}

func (m *chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - chatInputHeight - 8
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		m.input.SetWidth(msg.Width - 4)
		m.ready = true
		m.refreshViewport()
		return m, nil

	case turnDeltaMsg:
		m.partial += msg.delta
		m.refreshViewport()
		return m, m.cmdAwaitStream()

	case turnDoneMsg:
		m.streaming = false
		m.streamCh = nil
		m.partial = ""
		if msg.result.Reply != "" {
			line := chatLine{speaker: m.label, text: msg.result.Reply}
			if msg.result.Emotion != nil {
				line.emotion = fmt.Sprintf("%s %.2f", msg.result.Emotion.Label, msg.result.Emotion.Score)
			}
			m.transcript = append(m.transcript, line)
		}
		if msg.err != nil {
			m.errMsg = humanizeGatewayError(msg.err)
		}
		m.refreshViewport()
		return m, nil

	case copiedMsg:
		m.status = "Reply copied to clipboard"
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.ending {
			return m, nil
		}
		m.ending = true
		return m, m.cmdEndSession()

	case "ctrl+y":
		if reply, ok := m.lastReply(); ok {
			return m, cmdCopyToClipboard(reply)
		}
		return m, nil

	case "enter":
		if m.streaming || m.ending {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}

		m.input.Reset()
		m.errMsg = ""
		m.transcript = append(m.transcript, chatLine{speaker: "You", text: text})
		m.streaming = true
		m.partial = ""
		m.refreshViewport()

		m.streamCh = make(chan tea.Msg, 16)
		return m, tea.Batch(m.cmdSendTurn(text), m.cmdAwaitStream())

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) lastReply() (string, bool) {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if m.transcript[i].speaker != "You" {
			return m.transcript[i].text, true
		}
	}
	return "", false
}

func (m *chatModel) refreshViewport() {
	var b strings.Builder
	for _, line := range m.transcript {
		b.WriteString(speakerStyle.Render(line.speaker + ":"))
		b.WriteString(" ")
		b.WriteString(line.text)
		if line.emotion != "" {
			b.WriteString(" ")
			b.WriteString(emotionStyle.Render("(" + line.emotion + ")"))
		}
		b.WriteString("\n\n")
	}
	if m.streaming {
		b.WriteString(speakerStyle.Render(m.label + ":"))
		b.WriteString(" ")
		if m.partial == "" {
			b.WriteString(helpStyle.Render("..."))
		} else {
			b.WriteString(m.partial)
		}
		b.WriteString("\n")
	}

	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
	m.viewport.GotoBottom()
}

func (m *chatModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.session.Character.Name))
	if m.model != "" {
		b.WriteString(helpStyle.Render("  model: " + m.model))
	}
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: send │ ctrl+y: copy reply │ esc: end chat │ ctrl+c: quit"))
	return b.String()
}

// cmdSendTurn drives the streamed turn off the update loop. Deltas and the
// final result go through streamCh so the transcript renders as the reply
// arrives.
func (m *chatModel) cmdSendTurn(text string) tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway
	sessionID := m.session.SessionID
	model := m.model
	ch := m.streamCh

	return func() tea.Msg {
		go func() {
			result, err := gateway.SendTurn(ctx, sessionID, text, model, func(delta string) {
				ch <- turnDeltaMsg{delta: delta}
			})
			ch <- turnDoneMsg{result: result, err: err}
			close(ch)
		}()
		return nil
	}
}

func (m *chatModel) cmdAwaitStream() tea.Cmd {
	ch := m.streamCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return <-ch
	}
}

func (m *chatModel) cmdEndSession() tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway
	sessionID := m.session.SessionID

	return func() tea.Msg {
		return sessionEndedMsg{err: gateway.EndSession(ctx, sessionID)}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return clearStatusMsg{}
		}
		return copiedMsg{}
	}
}
