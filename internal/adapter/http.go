package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
	"github.com/go-resty/resty/v2"
)

// streamScanBuffer bounds a single NDJSON line of a streamed reply.
const streamScanBuffer = 1 << 20

type httpGatewayAdapter struct {
	client *utils.HTTPClient
	// stream shares the base URL but carries the longer per-turn timeout
	// and leaves response bodies unparsed so they can be consumed line by
	// line.
	stream *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPGatewayAdapter constructs an HTTP/REST implementation of
// [GatewayAdapter]. It normalises and validates the base URL from
// cfg.Gateway and configures two underlying HTTP clients: one with the
// regular request timeout for plain calls, and one with the stream timeout
// for streamed chat turns.
//
// Returns an error if cfg.Gateway is empty or cannot be parsed as a valid
// URL.
func NewHTTPGatewayAdapter(cfg config.ClientConfig, logger *logger.Logger) (GatewayAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway address: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	stream := utils.NewHTTPClient()
	stream.
		SetBaseURL(baseURL).
		SetTimeout(cfg.StreamTimeout).
		SetDoNotParseResponse(true)

	return &httpGatewayAdapter{client: client, stream: stream, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [GatewayAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpGatewayAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [GatewayAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpGatewayAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code,omitempty"`
}

// Register implements [GatewayAdapter]. It POSTs the credentials to
// POST /auth/register. Returns [ErrConflict] (wrapped) when the username is
// taken and [ErrBadRequest] when the invite code is missing or spent.
func (h *httpGatewayAdapter) Register(ctx context.Context, username, password, inviteCode string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(registerRequest{Username: username, Password: password, InviteCode: inviteCode}).
		Post("/auth/register")
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}

	return mapHTTPError(resp)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login implements [GatewayAdapter]. It POSTs the credentials to
// POST /auth/login. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken, and the account
// role from the response body is returned. Returns an error if the request
// fails, the server returns a non-2xx status, or the token cannot be parsed.
func (h *httpGatewayAdapter) Login(ctx context.Context, username, password string) (string, error) {
	var body models.LoginResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(loginRequest{Username: username, Password: password}).
		SetResult(&body).
		Post("/auth/login")
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return "", fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return body.Role, nil
}

// Characters implements [GatewayAdapter]. It GETs the public roster from
// GET /characters.
func (h *httpGatewayAdapter) Characters(ctx context.Context) ([]models.CharacterSummary, error) {
	var body models.CharactersResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/characters")
	if err != nil {
		return nil, fmt.Errorf("characters request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return body.Characters, nil
}

// Character implements [GatewayAdapter]. It GETs a single public character
// card from GET /characters/{id}. Returns [ErrNotFound] (wrapped) for an
// unknown id.
func (h *httpGatewayAdapter) Character(ctx context.Context, id string) (models.Character, error) {
	var body models.Character

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/characters/" + url.PathEscape(id))
	if err != nil {
		return models.Character{}, fmt.Errorf("character request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Character{}, err
	}

	return body, nil
}

// Models implements [GatewayAdapter]. It GETs the model names from
// GET /api/models. Requires a valid bearer token.
func (h *httpGatewayAdapter) Models(ctx context.Context) ([]string, error) {
	var body models.ModelsResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&body).
		Get("/api/models")
	if err != nil {
		return nil, fmt.Errorf("models request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return body.Models, nil
}

type startSessionRequest struct {
	CharID string `json:"char_id"`
}

// StartSession implements [GatewayAdapter]. It POSTs the character id to
// POST /api/chat/session and returns the session descriptor. Requires a
// valid bearer token.
func (h *httpGatewayAdapter) StartSession(ctx context.Context, characterID string) (models.SessionResponse, error) {
	var body models.SessionResponse

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(startSessionRequest{CharID: characterID}).
		SetResult(&body).
		Post("/api/chat/session")
	if err != nil {
		return models.SessionResponse{}, fmt.Errorf("start session request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SessionResponse{}, err
	}

	return body, nil
}

type turnRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// SendTurn implements [GatewayAdapter]. It POSTs the user message to
// POST /api/chat/{session_id} and consumes the NDJSON stream line by line,
// invoking onDelta for every text fragment. A failure reported on the
// terminal chunk is returned as a wrapped [ErrStreamInterrupted], with the
// deltas received so far preserved in the result. Requires a valid bearer
// token.
func (h *httpGatewayAdapter) SendTurn(ctx context.Context, sessionID, text, model string, onDelta func(delta string)) (TurnResult, error) {
	req := h.stream.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(turnRequest{Text: text, Model: model}).
		Post("/api/chat/" + url.PathEscape(sessionID))
	if err != nil {
		return TurnResult{}, fmt.Errorf("turn request: %w", err)
	}

	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		body, _ := io.ReadAll(io.LimitReader(raw, 4096))
		return TurnResult{}, mapStatusError(resp.StatusCode(), body)
	}

	return consumeStream(raw, onDelta)
}

// consumeStream reads NDJSON [models.StreamChunk] lines until the terminal
// chunk. Unparseable lines are skipped.
func consumeStream(r io.Reader, onDelta func(delta string)) (TurnResult, error) {
	var result TurnResult
	var reply strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), streamScanBuffer)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var chunk models.StreamChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}

		delta := chunk.Token
		if chunk.Message != nil {
			delta = chunk.Message.Content
		}
		if delta != "" {
			reply.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}

		if chunk.Done {
			result.Reply = reply.String()
			result.Emotion = chunk.Emotion
			if chunk.Error != "" {
				return result, fmt.Errorf("%w: %s", ErrStreamInterrupted, chunk.Error)
			}
			return result, nil
		}
	}
	if err := scanner.Err(); err != nil {
		result.Reply = reply.String()
		return result, fmt.Errorf("read turn stream: %w", err)
	}

	// Stream ended without a terminal chunk.
	result.Reply = reply.String()
	return result, fmt.Errorf("%w: response ended early", ErrStreamInterrupted)
}

// EndSession implements [GatewayAdapter]. It sends a DELETE request to
// DELETE /api/chat/{session_id}. Requires a valid bearer token.
func (h *httpGatewayAdapter) EndSession(ctx context.Context, sessionID string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/chat/" + url.PathEscape(sessionID))
	if err != nil {
		return fmt.Errorf("end session request: %w", err)
	}

	return mapHTTPError(resp)
}

// Whoami implements [GatewayAdapter]. It GETs the identity resolution of the
// authenticated account from GET /api/chat/whoami. Requires a valid bearer
// token.
func (h *httpGatewayAdapter) Whoami(ctx context.Context) (models.WhoamiResponse, error) {
	var body models.WhoamiResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&body).
		Get("/api/chat/whoami")
	if err != nil {
		return models.WhoamiResponse{}, fmt.Errorf("whoami request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WhoamiResponse{}, err
	}

	return body, nil
}

func (h *httpGatewayAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
