package upstream

import "errors"

var (
	ErrChatNotConfigured   = errors.New("chat endpoint is not configured")
	ErrModelsNotConfigured = errors.New("models endpoint is not configured")
	ErrChatUpstream        = errors.New("chat upstream error")
	ErrModelsUpstream      = errors.New("models upstream error")
)
