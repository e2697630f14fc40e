package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

// RemoteProvider resolves characters against a remote character API.
//
// Every fetch revalidates with If-None-Match against the injectable Cache:
// a 304 serves the cached decoded payload without re-parsing; a 200 swaps
// the whole cache entry. When the source is unreachable the last-known-good
// entry is served, and only an empty cache turns that into an error.
type RemoteProvider struct {
	client  *utils.HTTPClient
	baseURL string
	apiKey  string
	cache   Cache

	logger *logger.Logger
}

// NewRemoteProvider constructs a remote character source from cfg. The cache
// is injected so callers can share it or replace it in tests.
func NewRemoteProvider(cfg config.Characters, cache Cache, logger *logger.Logger) *RemoteProvider {
	client := utils.NewHTTPClient()
	if cfg.APIKey != "" {
		client.SetHeader("x-api-key", cfg.APIKey)
	}

	return &RemoteProvider{
		client:  client,
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		cache:   cache,
		logger:  logger,
	}
}

type rosterResponse struct {
	Characters []models.CharacterSummary `json:"characters"`
}

// List fetches the roster from GET /characters with ETag revalidation.
func (p *RemoteProvider) List(ctx context.Context) ([]models.CharacterSummary, error) {
	value, err := p.fetch(ctx, "/characters", func(payload []byte) (any, error) {
		var roster rosterResponse
		if err := json.Unmarshal(payload, &roster); err != nil {
			return nil, fmt.Errorf("failed to parse character roster: %w", err)
		}
		return roster.Characters, nil
	})
	if err != nil {
		return nil, err
	}

	roster, ok := value.([]models.CharacterSummary)
	if !ok {
		return nil, fmt.Errorf("unexpected cached roster type %T", value)
	}
	return roster, nil
}

// Get fetches a single resolved character from GET /characters/{id}.
func (p *RemoteProvider) Get(ctx context.Context, id string, view models.CharacterView) (models.Character, error) {
	value, err := p.fetch(ctx, "/characters/"+id, func(payload []byte) (any, error) {
		var character models.Character
		if err := json.Unmarshal(payload, &character); err != nil {
			return nil, fmt.Errorf("failed to parse character %s: %w", id, err)
		}
		if character.ID == "" {
			character.ID = id
		}
		return character, nil
	})
	if err != nil {
		return models.Character{}, err
	}

	character, ok := value.(models.Character)
	if !ok {
		return models.Character{}, fmt.Errorf("unexpected cached character type %T", value)
	}
	if view != models.ViewPrivate {
		character = character.Public()
	}

	return character, nil
}

// fetch runs one conditional GET against path. decode turns a fresh payload
// into its served form; it is never called on the 304 path.
func (p *RemoteProvider) fetch(ctx context.Context, path string, decode func(payload []byte) (any, error)) (any, error) {
	log := logger.FromContext(ctx)

	cached, hasCached := p.cache.Load(path)

	req := p.client.R().SetContext(ctx)
	if hasCached && cached.ETag != "" {
		req.SetHeader("If-None-Match", cached.ETag)
	}

	resp, err := req.Get(p.baseURL + path)
	if err != nil {
		if hasCached {
			log.Warn().Err(err).Str("path", path).Msg("character source unreachable, serving cached roster")
			return cached.Value, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotModified && hasCached:
		return cached.Value, nil

	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrCharacterNotFound

	case resp.IsSuccess():
		payload := resp.Body()
		value, err := decode(payload)
		if err != nil {
			return nil, err
		}

		p.cache.Swap(path, Entry{
			ETag:      resp.Header().Get("ETag"),
			Payload:   payload,
			Value:     value,
			FetchedAt: time.Now().UTC(),
		})
		return value, nil

	default:
		if hasCached {
			log.Warn().Int("status", resp.StatusCode()).Str("path", path).Msg("character source error, serving cached roster")
			return cached.Value, nil
		}
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode())
	}
}
