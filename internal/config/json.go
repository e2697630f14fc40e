package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and the
// string-friendly [Duration] type so timeouts can be written as "120s".
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey              string   `json:"token_sign_key"`
		TokenIssuer               string   `json:"token_issuer"`
		TokenDuration             Duration `json:"token_duration"`
		AdminKey                  string   `json:"admin_key"`
		RegistrationEnabled       bool     `json:"registration_enabled"`
		RegistrationRequireInvite bool     `json:"registration_require_invite"`
	} `json:"app,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Storage struct {
		DSN      string `json:"dsn"`
		StateDir string `json:"state_dir"`
	} `json:"storage,omitempty"`

	Characters struct {
		Dir       string `json:"dir"`
		PromptDir string `json:"prompt_dir"`
		InfoDir   string `json:"info_dir"`
		AvatarDir string `json:"avatar_dir"`
		APIURL    string `json:"api_url"`
		APIKey    string `json:"api_key"`
		HostURL   string `json:"host_url"`
	} `json:"characters,omitempty"`

	Upstream struct {
		ChatAPIURL  string   `json:"chat_api_url"`
		ChatAPIKey  string   `json:"chat_api_key"`
		ChatTimeout Duration `json:"chat_timeout"`

		ModelsAPIURL  string   `json:"models_api_url"`
		ModelsAPIKey  string   `json:"models_api_key"`
		ModelsTimeout Duration `json:"models_timeout"`

		EmotionAPIURL  string   `json:"emotion_api_url"`
		EmotionAPIKey  string   `json:"emotion_api_key"`
		EmotionTimeout Duration `json:"emotion_timeout"`
		EmotionEnabled bool     `json:"emotion_enabled"`

		IdentityAPIURL  string   `json:"identity_api_url"`
		IdentityAPIKey  string   `json:"identity_api_key"`
		IdentityTimeout Duration `json:"identity_timeout"`
	} `json:"upstream,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:              jsonCfg.App.TokenSignKey,
			TokenIssuer:               jsonCfg.App.TokenIssuer,
			TokenDuration:             time.Duration(jsonCfg.App.TokenDuration),
			AdminKey:                  jsonCfg.App.AdminKey,
			RegistrationEnabled:       jsonCfg.App.RegistrationEnabled,
			RegistrationRequireInvite: jsonCfg.App.RegistrationRequireInvite,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Storage: Storage{
			DSN:      jsonCfg.Storage.DSN,
			StateDir: jsonCfg.Storage.StateDir,
		},
		Characters: Characters{
			Dir:       jsonCfg.Characters.Dir,
			PromptDir: jsonCfg.Characters.PromptDir,
			InfoDir:   jsonCfg.Characters.InfoDir,
			AvatarDir: jsonCfg.Characters.AvatarDir,
			APIURL:    jsonCfg.Characters.APIURL,
			APIKey:    jsonCfg.Characters.APIKey,
			HostURL:   jsonCfg.Characters.HostURL,
		},
		Upstream: Upstream{
			ChatAPIURL:  jsonCfg.Upstream.ChatAPIURL,
			ChatAPIKey:  jsonCfg.Upstream.ChatAPIKey,
			ChatTimeout: time.Duration(jsonCfg.Upstream.ChatTimeout),

			ModelsAPIURL:  jsonCfg.Upstream.ModelsAPIURL,
			ModelsAPIKey:  jsonCfg.Upstream.ModelsAPIKey,
			ModelsTimeout: time.Duration(jsonCfg.Upstream.ModelsTimeout),

			EmotionAPIURL:  jsonCfg.Upstream.EmotionAPIURL,
			EmotionAPIKey:  jsonCfg.Upstream.EmotionAPIKey,
			EmotionTimeout: time.Duration(jsonCfg.Upstream.EmotionTimeout),
			EmotionEnabled: jsonCfg.Upstream.EmotionEnabled,

			IdentityAPIURL:  jsonCfg.Upstream.IdentityAPIURL,
			IdentityAPIKey:  jsonCfg.Upstream.IdentityAPIKey,
			IdentityTimeout: time.Duration(jsonCfg.Upstream.IdentityTimeout),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
