package upstream

import (
	"context"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

// DefaultPreferredName is the generic greeting term substituted when the
// identity resolver is unavailable or unconfigured.
const DefaultPreferredName = "there"

// IdentityClient maps an external user id to a person id and preferred
// name. Resolution is best-effort enrichment: every failure, including a
// timeout, degrades to the anonymous default and is never surfaced to the
// caller.
type IdentityClient struct {
	client *utils.HTTPClient
	url    string
	apiKey string

	logger *logger.Logger
}

func NewIdentityClient(cfg config.Upstream, logger *logger.Logger) *IdentityClient {
	client := utils.NewHTTPClient()
	client.SetTimeout(cfg.IdentityTimeout)
	if cfg.IdentityAPIKey != "" {
		client.SetHeader("x-api-key", cfg.IdentityAPIKey)
	}

	return &IdentityClient{
		client: client,
		url:    cfg.IdentityAPIURL,
		apiKey: cfg.IdentityAPIKey,
		logger: logger,
	}
}

// Resolve returns the identity for externalID, or the anonymous default on
// any failure.
func (c *IdentityClient) Resolve(ctx context.Context, externalID string) models.Identity {
	log := logger.FromContext(ctx)

	fallback := models.Identity{
		PersonID:      "anonymous:" + externalID,
		PreferredName: DefaultPreferredName,
	}

	if c.url == "" {
		return fallback
	}

	var identity models.Identity
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("external_id", externalID).
		SetResult(&identity).
		Get(c.url + "/identity/resolve")
	if err != nil {
		log.Warn().Err(err).Str("external_id", externalID).Msg("identity resolve failed")
		return fallback
	}
	if !resp.IsSuccess() {
		log.Warn().Int("status", resp.StatusCode()).Str("external_id", externalID).Msg("identity resolve rejected")
		return fallback
	}

	if identity.PersonID == "" {
		identity.PersonID = fallback.PersonID
	}
	if identity.PreferredName == "" {
		identity.PreferredName = fallback.PreferredName
	}

	return identity
}
