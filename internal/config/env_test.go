package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_FullSurface(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:8000")
	t.Setenv("STORAGE_DATABASE_URI", "/state/users.sqlite")
	t.Setenv("STORAGE_STATE_DIR", "/var/state")
	t.Setenv("APP_TOKEN_SIGN_KEY", "secret")
	t.Setenv("CHAT_API_URL", "http://ollama:11434/api/chat")
	t.Setenv("CHAT_TIMEOUT", "90s")
	t.Setenv("IDENTITY_API_URL", "http://identity:9000")
	t.Setenv("EMOTION_ENABLED", "true")
	t.Setenv("USER_ADMIN_API_KEY", "admin-key")
	t.Setenv("CHAR_DIR", "/app/characters")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.HTTPAddress)
	assert.Equal(t, "/state/users.sqlite", cfg.Storage.DSN)
	assert.Equal(t, "/var/state", cfg.Storage.StateDir)
	assert.Equal(t, "secret", cfg.App.TokenSignKey)
	assert.Equal(t, "http://ollama:11434/api/chat", cfg.Upstream.ChatAPIURL)
	assert.Equal(t, 90*time.Second, cfg.Upstream.ChatTimeout)
	assert.Equal(t, "http://identity:9000", cfg.Upstream.IdentityAPIURL)
	assert.True(t, cfg.Upstream.EmotionEnabled)
	assert.Equal(t, "admin-key", cfg.App.AdminKey)
	assert.Equal(t, "/app/characters", cfg.Characters.Dir)
}

func TestParseEnv_Defaults(t *testing.T) {
	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, 120*time.Second, cfg.Upstream.ChatTimeout)
	assert.Equal(t, 10*time.Second, cfg.Upstream.ModelsTimeout)
	assert.Equal(t, 10*time.Second, cfg.Upstream.EmotionTimeout)
	assert.Equal(t, 10*time.Second, cfg.Upstream.IdentityTimeout)
	assert.Equal(t, "companion-gateway", cfg.App.TokenIssuer)
	assert.Equal(t, 12*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "/state", cfg.Storage.StateDir)
	assert.True(t, cfg.App.RegistrationEnabled)
	assert.True(t, cfg.App.RegistrationRequireInvite)
	assert.False(t, cfg.Upstream.EmotionEnabled)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("CHAT_TIMEOUT", "not-a-duration")

	cfg := &StructuredConfig{}
	require.Error(t, parseEnv(cfg))
}
