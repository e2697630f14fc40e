package config

import "errors"

var (
	ErrInvalidServerConfigs    = errors.New("server address is required")
	ErrInvalidStorageConfigs   = errors.New("credential database DSN is required")
	ErrInvalidAppConfigs       = errors.New("token sign key is required")
	ErrInvalidCharacterConfigs = errors.New("either a character directory or a character API URL is required")
	ErrInvalidClientConfigs    = errors.New("client timeouts must be positive")
	ErrInvalidWatchdogConfigs  = errors.New("at least one container name is required")
)
