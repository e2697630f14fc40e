package upstream

import (
	"context"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

// EmotionClient classifies a completed assistant reply. The annotation is
// best-effort: a disabled or failing classifier returns nil without error,
// and the chat turn proceeds unannotated.
type EmotionClient struct {
	client  *utils.HTTPClient
	url     string
	apiKey  string
	enabled bool

	logger *logger.Logger
}

func NewEmotionClient(cfg config.Upstream, logger *logger.Logger) *EmotionClient {
	client := utils.NewHTTPClient()
	client.SetTimeout(cfg.EmotionTimeout)

	return &EmotionClient{
		client:  client,
		url:     cfg.EmotionAPIURL,
		apiKey:  cfg.EmotionAPIKey,
		enabled: cfg.EmotionEnabled && cfg.EmotionAPIURL != "",
		logger:  logger,
	}
}

type emotionRequest struct {
	Text string `json:"text"`
}

// Detect returns the emotion label and confidence for text, or nil when
// detection is disabled or fails.
func (c *EmotionClient) Detect(ctx context.Context, text string) *models.Emotion {
	log := logger.FromContext(ctx)

	if !c.enabled || text == "" {
		return nil
	}

	var result models.Emotion
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(emotionRequest{Text: text}).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		log.Warn().Err(err).Msg("emotion detection failed")
		return nil
	}
	if !resp.IsSuccess() {
		log.Warn().Int("status", resp.StatusCode()).Msg("emotion endpoint rejected request")
		return nil
	}
	if result.Label == "" {
		return nil
	}

	return &result
}
