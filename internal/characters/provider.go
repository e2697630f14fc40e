// Package characters resolves persona definitions for the chat relay and
// the public roster endpoints.
//
// Definitions come either from a local directory of JSON files (DirProvider)
// or from a remote character API revalidated with ETags (RemoteProvider).
// Both sources produce the same resolved form: prompt and background
// references replaced by file content, computed alias lists, absolute avatar
// URLs, and the secrets key stripped.
package characters

import (
	"context"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

// Provider is the read-side contract shared by the local and remote
// character sources.
type Provider interface {
	// List returns the lightweight roster view, sorted by character id.
	List(ctx context.Context) ([]models.CharacterSummary, error)

	// Get resolves a single character. The public view strips prompt and
	// background text; the private view includes them. Unknown ids return
	// ErrCharacterNotFound.
	Get(ctx context.Context, id string, view models.CharacterView) (models.Character, error)
}

// NewProvider selects the character source from cfg: a configured API URL
// switches to the remote source; otherwise definitions come from the local
// directory.
func NewProvider(cfg config.Characters, log *logger.Logger) Provider {
	if cfg.APIURL != "" {
		log.Info().Str("api_url", cfg.APIURL).Msg("using remote character source")
		return NewRemoteProvider(cfg, NewMemoryCache(), log)
	}

	log.Info().Str("char_dir", cfg.Dir).Msg("using local character directory")
	return NewDirProvider(cfg, log)
}
