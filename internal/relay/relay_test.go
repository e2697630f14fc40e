package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/sessionlog"
	"github.com/cathy-ai/companion-gateway/internal/upstream"
	"github.com/cathy-ai/companion-gateway/models"
)

// stubProvider serves one fixed character.
type stubProvider struct {
	character models.Character
	err       error
}

func (p *stubProvider) List(ctx context.Context) ([]models.CharacterSummary, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []models.CharacterSummary{p.character.Summary()}, nil
}

func (p *stubProvider) Get(ctx context.Context, id string, view models.CharacterView) (models.Character, error) {
	if p.err != nil {
		return models.Character{}, p.err
	}
	c := p.character
	if view != models.ViewPrivate {
		c = c.Public()
	}
	return c, nil
}

func testCharacter() models.Character {
	return models.Character{
		ID:           "cathy",
		Name:         "Cathy Winters",
		Model:        "llama3",
		Greeting:     "Hey you!",
		SystemPrompt: "You are Cathy.",
		Background:   "You grew up by the sea.",
	}
}

func newTestRelay(t *testing.T, chatURL string) (*Relay, string) {
	t.Helper()
	stateDir := t.TempDir()

	cfg := config.Upstream{ChatAPIURL: chatURL, ChatTimeout: 2 * time.Second}
	clients := upstream.NewClients(cfg, logger.Nop())
	appender := sessionlog.NewAppender(stateDir, logger.Nop())
	provider := &stubProvider{character: testCharacter()}

	return New(clients, provider, appender, logger.Nop()), stateDir
}

func ndjsonChatServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, line := range lines {
			io.WriteString(w, line+"\n")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sessionEvents(t *testing.T, stateDir string, session *Session) []models.Event {
	t.Helper()
	file := filepath.Join(stateDir, "sessions", session.Identity.PersonID,
		session.Character.ID, strings.ReplaceAll(session.ID, ":", "_")+".ndjson")

	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer f.Close()

	var events []models.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event models.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	return events
}

func TestStartSession(t *testing.T) {
	r, _ := newTestRelay(t, "http://unused")

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.ID, "gateway:"))
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, "gateway:username:alice", session.ExternalUserID)
	assert.Equal(t, "llama3", session.DefaultModel)

	// identity resolver is unconfigured, so the anonymous default applies
	assert.Equal(t, "anonymous:gateway:username:alice", session.Identity.PersonID)
	assert.Equal(t, upstream.DefaultPreferredName, session.Identity.PreferredName)

	history := session.History()
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleSystem, history[0].Role)
	assert.Contains(t, history[0].Content, "The user's preferred name is there.")
	assert.Contains(t, history[0].Content, "You are Cathy.")
	assert.Contains(t, history[0].Content, "You grew up by the sea.")
}

func TestStartSession_CharacterError(t *testing.T) {
	r, _ := newTestRelay(t, "http://unused")
	r.characters = &stubProvider{err: errors.New("source down")}

	_, err := r.StartSession(context.Background(), "alice", "cathy")
	assert.Error(t, err)
}

func TestGetSession_Ownership(t *testing.T) {
	r, _ := newTestRelay(t, "http://unused")

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	got, err := r.GetSession(session.ID, "alice")
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = r.GetSession(session.ID, "mallory")
	assert.ErrorIs(t, err, ErrNotSessionOwner)

	_, err = r.GetSession("gateway:missing", "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEndSession(t *testing.T) {
	r, _ := newTestRelay(t, "http://unused")

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	r.EndSession(session.ID)

	_, err = r.GetSession(session.ID, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTurn_Success(t *testing.T) {
	srv := ndjsonChatServer(t,
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":"Hello there!"},"done":true}`,
	)
	r, stateDir := newTestRelay(t, srv.URL)

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	var emitted []string
	reply, _, err := r.Turn(context.Background(), session, "hi!", "", func(delta string) error {
		emitted = append(emitted, delta)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there!", reply)
	assert.Equal(t, reply, strings.Join(emitted, ""),
		"emitted deltas concatenated must equal the persisted reply")

	history := session.History()
	require.Len(t, history, 3)
	assert.Equal(t, models.RoleUserMsg, history[1].Role)
	assert.Equal(t, "hi!", history[1].Content)
	assert.Equal(t, models.RoleAssistant, history[2].Role)
	assert.Equal(t, "Hello there!", history[2].Content)

	events := sessionEvents(t, stateDir, session)
	require.Len(t, events, 2)
	assert.Equal(t, "user", events[0].Sender)
	assert.Equal(t, "assistant", events[1].Sender)
	assert.Equal(t, "Hello there!", events[1].Text)
	assert.Equal(t, session.ExternalUserID, events[0].ExternalUserID)
}

func TestTurn_NilEmit(t *testing.T) {
	srv := ndjsonChatServer(t, `{"message":{"role":"assistant","content":"Hi"},"done":true}`)
	r, _ := newTestRelay(t, srv.URL)

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	reply, _, err := r.Turn(context.Background(), session, "hi", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi", reply)
}

func TestTurn_NoModel(t *testing.T) {
	r, _ := newTestRelay(t, "http://unused")
	r.characters = &stubProvider{character: models.Character{ID: "bare", Name: "Bare"}}

	session, err := r.StartSession(context.Background(), "alice", "bare")
	require.NoError(t, err)

	_, _, err = r.Turn(context.Background(), session, "hi", "", nil)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestTurn_UpstreamFailureDiscardsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	r, stateDir := newTestRelay(t, srv.URL)

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	_, _, err = r.Turn(context.Background(), session, "hi", "", nil)
	require.Error(t, err)

	// history keeps only the user turn, nothing partial
	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUserMsg, history[1].Role)

	events := sessionEvents(t, stateDir, session)
	require.Len(t, events, 2)
	assert.Equal(t, "user", events[0].Sender)
	assert.Equal(t, "system", events[1].Sender)
	assert.Contains(t, events[1].Text, "chat error")
}

func TestTurn_TimeoutDiscardsPartial(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"role":"assistant","content":"partial"},"done":false}`+"\n")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	stateDir := t.TempDir()
	cfg := config.Upstream{ChatAPIURL: srv.URL, ChatTimeout: 100 * time.Millisecond}
	clients := upstream.NewClients(cfg, logger.Nop())
	r := New(clients, &stubProvider{character: testCharacter()},
		sessionlog.NewAppender(stateDir, logger.Nop()), logger.Nop())

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	var emitted []string
	_, _, err = r.Turn(context.Background(), session, "hi", "", func(delta string) error {
		emitted = append(emitted, delta)
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"partial"}, emitted, "the delta was emitted live before the timeout")

	history := session.History()
	require.Len(t, history, 2, "partial reply must not enter history")
	assert.Equal(t, models.RoleUserMsg, history[1].Role)

	events := sessionEvents(t, stateDir, session)
	require.Len(t, events, 2)
	assert.Equal(t, "system", events[1].Sender)
}

func TestTurn_EmitErrorAbortsTurn(t *testing.T) {
	srv := ndjsonChatServer(t,
		`{"message":{"role":"assistant","content":"Hel"},"done":false}`,
		`{"message":{"role":"assistant","content":"lo"},"done":true}`,
	)
	r, _ := newTestRelay(t, srv.URL)

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	_, _, err = r.Turn(context.Background(), session, "hi", "", func(delta string) error {
		return errors.New("client disconnected")
	})
	require.Error(t, err)

	history := session.History()
	require.Len(t, history, 2, "aborted turn must not persist the assistant message")
}

func TestTurn_OneActiveTurnPerSession(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		io.WriteString(w, `{"message":{"role":"assistant","content":"done"},"done":true}`+"\n")
	}))
	defer srv.Close()

	r, _ := newTestRelay(t, srv.URL)

	session, err := r.StartSession(context.Background(), "alice", "cathy")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, err := r.Turn(context.Background(), session, "first", "", nil)
		assert.NoError(t, err)
	}()

	<-started
	_, _, err = r.Turn(context.Background(), session, "second", "", nil)
	assert.ErrorIs(t, err, ErrTurnInProgress)

	close(release)
	wg.Wait()
}

func TestWhoami_DefaultsWithoutIdentityService(t *testing.T) {
	r, _ := newTestRelay(t, "")

	externalUserID, identity := r.Whoami(context.Background(), "alice")

	assert.Equal(t, "gateway:username:alice", externalUserID)
	assert.Equal(t, "anonymous:gateway:username:alice", identity.PersonID)
	assert.Equal(t, "there", identity.PreferredName)
}
