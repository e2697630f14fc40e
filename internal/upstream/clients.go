// Package upstream holds the HTTP clients for the gateway's external
// collaborators: the chat/models endpoints of the model backend, the
// optional emotion classifier, and the optional identity resolver.
//
// Failure policy differs per collaborator. Chat and models errors surface
// to the caller; identity and emotion errors degrade to safe defaults and
// are only logged.
package upstream

import (
	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
)

// Clients bundles the upstream clients for wiring into the relay and the
// HTTP handlers.
type Clients struct {
	Chat     *ChatClient
	Models   *ModelsClient
	Emotion  *EmotionClient
	Identity *IdentityClient
}

func NewClients(cfg config.Upstream, log *logger.Logger) *Clients {
	return &Clients{
		Chat:     NewChatClient(cfg, log),
		Models:   NewModelsClient(cfg, log),
		Emotion:  NewEmotionClient(cfg, log),
		Identity: NewIdentityClient(cfg, log),
	}
}
