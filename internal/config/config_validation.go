package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Missing upstream endpoints are deliberately not validated here: the
// gateway degrades per-feature (no models, no emotion) instead of refusing
// to start, matching the behavior of the chat frontends it replaces.
func (cfg *StructuredConfig) validate() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Characters.Dir == "" && cfg.Characters.APIURL == "" {
		return ErrInvalidCharacterConfigs
	}

	return nil
}
