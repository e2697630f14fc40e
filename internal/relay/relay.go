// Package relay drives chat turns: it composes the outbound request from
// the active character and history, streams the reply back as deltas, and
// persists completed turns to the session log.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cathy-ai/companion-gateway/internal/characters"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/sessionlog"
	"github.com/cathy-ai/companion-gateway/internal/upstream"
	"github.com/cathy-ai/companion-gateway/models"
)

// EmitFunc receives each delta as it arrives. Returning an error aborts the
// turn (the client went away); the upstream stream is closed immediately.
type EmitFunc func(delta string) error

// Relay owns the session registry and the turn lifecycle.
type Relay struct {
	chat       *upstream.ChatClient
	emotion    *upstream.EmotionClient
	identity   *upstream.IdentityClient
	characters characters.Provider
	sessions   *Registry
	log        *sessionlog.Appender

	logger *logger.Logger
}

func New(clients *upstream.Clients, provider characters.Provider, appender *sessionlog.Appender, logger *logger.Logger) *Relay {
	return &Relay{
		chat:       clients.Chat,
		emotion:    clients.Emotion,
		identity:   clients.Identity,
		characters: provider,
		sessions:   NewRegistry(),
		log:        appender,
		logger:     logger,
	}
}

// StartSession opens a conversation between username and the character
// charID. It resolves the private character view, resolves the user's
// identity (degrading to the anonymous default), and seeds the history with
// the identity hint plus the character's system prompt.
func (r *Relay) StartSession(ctx context.Context, username, charID string) (*Session, error) {
	log := logger.FromContext(ctx)

	character, err := r.characters.Get(ctx, charID, models.ViewPrivate)
	if err != nil {
		return nil, fmt.Errorf("resolving character failed: %w", err)
	}

	externalUserID := "gateway:username:" + username
	identity := r.identity.Resolve(ctx, externalUserID)

	session := &Session{
		Username:       username,
		ExternalUserID: externalUserID,
		Identity:       identity,
		Character:      character,
		DefaultModel:   character.Model,
	}
	session.appendHistory(models.RoleSystem, systemPrompt(identity.PreferredName, character))
	r.sessions.Add(session)

	log.Info().
		Str("session_id", session.ID).
		Str("char_id", charID).
		Str("person_id", identity.PersonID).
		Msg("chat session started")

	return session, nil
}

// Whoami reports how username maps onto the identity service: the derived
// external user id and the resolved (or defaulted) identity.
func (r *Relay) Whoami(ctx context.Context, username string) (string, models.Identity) {
	externalUserID := "gateway:username:" + username
	return externalUserID, r.identity.Resolve(ctx, externalUserID)
}

// GetSession returns the session when it exists and belongs to username.
func (r *Relay) GetSession(id, username string) (*Session, error) {
	session, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Username != username {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// EndSession drops the session from the registry.
func (r *Relay) EndSession(id string) {
	r.sessions.Remove(id)
}

// Turn runs one complete exchange: append the user message, stream the
// reply (forwarding every delta through emit as it arrives; emit may be
// nil), then persist the assistant turn.
//
// Only fully formed turns are persisted. When the stream fails mid-reply
// (timeout, upstream error, client gone) the partial text is discarded:
// history keeps only the user message, a system error event is recorded in
// the session log, and the error is returned for the caller to surface.
//
// The completed reply is annotated with an emotion classification when the
// classifier is enabled; annotation failures are silent.
func (r *Relay) Turn(ctx context.Context, session *Session, userText, model string, emit EmitFunc) (string, *models.Emotion, error) {
	log := logger.FromContext(ctx)

	if err := session.begin(); err != nil {
		return "", nil, err
	}
	defer session.end()

	if model == "" {
		model = session.DefaultModel
	}
	if model == "" {
		return "", nil, ErrNoModel
	}

	session.appendHistory(models.RoleUserMsg, userText)
	r.appendEvent(ctx, session, "user", userText)

	stream, err := r.chat.Stream(ctx, model, session.History())
	if err != nil {
		r.appendEvent(ctx, session, "system", fmt.Sprintf("chat error: %v", err))
		return "", nil, err
	}
	defer stream.Close()

	reply, err := consume(stream, emit)
	if err != nil {
		log.Err(err).Str("session_id", session.ID).Msg("chat turn failed, discarding partial reply")
		r.appendEvent(ctx, session, "system", fmt.Sprintf("chat error: %v", err))
		return "", nil, err
	}

	session.appendHistory(models.RoleAssistant, reply)
	r.appendEvent(ctx, session, "assistant", reply)

	emotion := r.emotion.Detect(ctx, reply)

	return reply, emotion, nil
}

func consume(stream *upstream.Stream, emit EmitFunc) (string, error) {
	var reply []byte
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return string(reply), nil
		}
		if err != nil {
			return "", err
		}

		reply = append(reply, delta...)
		if emit != nil {
			if err = emit(delta); err != nil {
				return "", fmt.Errorf("client stopped consuming: %w", err)
			}
		}
	}
}

func (r *Relay) appendEvent(ctx context.Context, session *Session, sender, text string) {
	r.log.Append(ctx, models.Event{
		SessionID:      session.ID,
		PersonID:       session.Identity.PersonID,
		CharID:         session.Character.ID,
		ExternalUserID: session.ExternalUserID,
		Sender:         sender,
		Text:           text,
	})
}

// systemPrompt builds the seeded system message: the identity hint followed
// by the character's resolved prompt and background.
func systemPrompt(preferredName string, character models.Character) string {
	hint := fmt.Sprintf("The user's preferred name is %s. Address them by this name when natural.\n\n", preferredName)

	prompt := character.SystemPrompt
	if character.Background != "" {
		if prompt != "" {
			prompt += "\n\n"
		}
		prompt += character.Background
	}

	return hint + prompt
}
