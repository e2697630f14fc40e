package upstream

import (
	"context"
	"fmt"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

// ModelsClient fetches the list of available model names. Failures surface
// to the caller; the chat UI treats an empty list as "no models available".
type ModelsClient struct {
	client *utils.HTTPClient
	url    string
	apiKey string

	logger *logger.Logger
}

func NewModelsClient(cfg config.Upstream, logger *logger.Logger) *ModelsClient {
	client := utils.NewHTTPClient()
	client.SetTimeout(cfg.ModelsTimeout)

	return &ModelsClient{
		client: client,
		url:    cfg.ModelsAPIURL,
		apiKey: cfg.ModelsAPIKey,
		logger: logger,
	}
}

// Fetch returns the model names advertised by the models endpoint.
func (c *ModelsClient) Fetch(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	if c.url == "" {
		return nil, ErrModelsNotConfigured
	}

	var result models.ModelsResponse
	req := c.client.R().SetContext(ctx).SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Get(c.url)
	if err != nil {
		log.Err(err).Msg("failed to fetch models")
		return nil, fmt.Errorf("%w: %v", ErrModelsUpstream, err)
	}
	if !resp.IsSuccess() {
		log.Error().Int("status", resp.StatusCode()).Msg("models endpoint rejected request")
		return nil, fmt.Errorf("%w: status %d", ErrModelsUpstream, resp.StatusCode())
	}

	log.Info().Int("count", len(result.Models)).Msg("fetched models")
	return result.Models, nil
}
