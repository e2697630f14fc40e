// Package adapter provides the transport layer of the terminal chat client.
//
// The primary abstraction is [GatewayAdapter], which decouples the client UI
// from the HTTP wire format of the companion gateway. The package ships an
// HTTP/REST implementation ([NewHTTPGatewayAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrConflict] for 409).
package adapter

import (
	"context"

	"github.com/cathy-ai/companion-gateway/models"
)

// TurnResult is the outcome of a completed chat turn: the full reply text
// assembled from the streamed deltas, plus the emotion annotation of the
// terminal chunk when the gateway produced one.
type TurnResult struct {
	Reply   string
	Emotion *models.Emotion
}

// GatewayAdapter defines transport-agnostic communication with the companion
// gateway. Implementations are responsible for serialisation, bearer token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type GatewayAdapter interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Register creates a new account. Depending on the gateway's
	// registration policy an invite code may be required; pass an empty
	// string when none was given.
	Register(ctx context.Context, username, password, inviteCode string) error

	// Login authenticates with the gateway. On success the bearer token from
	// the Authorization response header is stored via SetToken, and the
	// account's role is returned.
	Login(ctx context.Context, username, password string) (string, error)

	// Characters fetches the public character roster.
	Characters(ctx context.Context) ([]models.CharacterSummary, error)

	// Character fetches the public card of a single character.
	Character(ctx context.Context, id string) (models.Character, error)

	// Models lists the model names available on the gateway's upstream.
	// Requires a valid bearer token.
	Models(ctx context.Context) ([]string, error)

	// StartSession opens a chat session with the given character and returns
	// the session descriptor, including the greeting starter and the name
	// the character will call the user. Requires a valid bearer token.
	StartSession(ctx context.Context, characterID string) (models.SessionResponse, error)

	// SendTurn sends one user message and consumes the streamed NDJSON
	// response. onDelta is invoked once per incremental text fragment, in
	// arrival order; it may be nil. The assembled reply is returned when the
	// stream completes. Requires a valid bearer token.
	SendTurn(ctx context.Context, sessionID, text, model string, onDelta func(delta string)) (TurnResult, error)

	// EndSession closes a chat session. Requires a valid bearer token.
	EndSession(ctx context.Context, sessionID string) error

	// Whoami reports how the gateway resolves the authenticated account to a
	// person: the external user id, the person id and the preferred name.
	// Requires a valid bearer token.
	Whoami(ctx context.Context) (models.WhoamiResponse, error)
}
