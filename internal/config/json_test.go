package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseJSON_Full(t *testing.T) {
	path := writeConfigFile(t, `{
		"app": {"token_sign_key": "k", "token_duration": "6h", "registration_enabled": true},
		"server": {"http_address": "127.0.0.1:8000", "request_timeout": "30s"},
		"storage": {"dsn": "users.sqlite", "state_dir": "/tmp/state"},
		"characters": {"dir": "/chars", "api_key": "char-key"},
		"upstream": {"chat_api_url": "http://chat", "chat_timeout": "45s", "emotion_enabled": true}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.App.TokenSignKey)
	assert.Equal(t, 6*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "users.sqlite", cfg.Storage.DSN)
	assert.Equal(t, "/chars", cfg.Characters.Dir)
	assert.Equal(t, "char-key", cfg.Characters.APIKey)
	assert.Equal(t, "http://chat", cfg.Upstream.ChatAPIURL)
	assert.Equal(t, 45*time.Second, cfg.Upstream.ChatTimeout)
	assert.True(t, cfg.Upstream.EmotionEnabled)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	// durations may also be given as nanosecond numbers
	path := writeConfigFile(t, `{"upstream": {"chat_timeout": 1000000000}}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Upstream.ChatTimeout)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON("/does/not/exist.json")
	require.Error(t, err)
}

func TestParseJSON_BadJSON(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	_, err := parseJSON(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := StructuredConfig{
		App:        App{TokenSignKey: "k"},
		Server:     Server{HTTPAddress: ":8000"},
		Storage:    Storage{DSN: "users.sqlite"},
		Characters: Characters{Dir: "/chars"},
	}

	tests := []struct {
		name    string
		mutate  func(*StructuredConfig)
		wantErr error
	}{
		{"valid", func(c *StructuredConfig) {}, nil},
		{"no address", func(c *StructuredConfig) { c.Server.HTTPAddress = "" }, ErrInvalidServerConfigs},
		{"no dsn", func(c *StructuredConfig) { c.Storage.DSN = "" }, ErrInvalidStorageConfigs},
		{"no sign key", func(c *StructuredConfig) { c.App.TokenSignKey = "" }, ErrInvalidAppConfigs},
		{"no character source", func(c *StructuredConfig) { c.Characters.Dir = "" }, ErrInvalidCharacterConfigs},
		{"remote characters only", func(c *StructuredConfig) {
			c.Characters.Dir = ""
			c.Characters.APIURL = "http://chars"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNetAddress_Set(t *testing.T) {
	var a NetAddress
	require.NoError(t, a.Set("localhost:8000"))
	assert.Equal(t, "localhost:8000", a.String())

	require.Error(t, a.Set("no-port"))
	require.Error(t, a.Set("localhost:-1"))
	require.Error(t, a.Set("not an ip:80"))
}
