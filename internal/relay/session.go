package relay

import (
	"sync"

	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

// Session is one running conversation: an authenticated account talking to
// one character through one growing message history.
//
// History is guarded by the turn flag rather than a lock around every
// access: the registry admits at most one active turn per session, which is
// also the single-writer guarantee the session log file relies on.
type Session struct {
	ID             string
	Username       string
	ExternalUserID string
	Identity       models.Identity
	Character      models.Character

	// DefaultModel is used when a turn does not name a model.
	DefaultModel string

	mu      sync.Mutex
	busy    bool
	history []models.ChatMessage
}

// begin marks the session as running a turn. It fails instead of blocking
// when a turn is already active.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrTurnInProgress
	}
	s.busy = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *Session) appendHistory(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, models.ChatMessage{Role: role, Content: content})
}

// History returns a copy of the message history.
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Registry keeps the live sessions of this process. Session ids are
// time-ordered UUIDs prefixed with the source tag.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ids      *utils.UUIDGenerator
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ids:      utils.NewUUIDGenerator(),
	}
}

// Add registers the session under a freshly generated id and returns it.
func (r *Registry) Add(session *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = "gateway:" + r.ids.Generate()
	r.sessions[session.ID] = session
	return session
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	return session, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}
