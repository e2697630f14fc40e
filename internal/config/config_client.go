package config

import (
	"flag"
	"time"
)

// ClientConfig holds the configuration of the terminal chat client.
type ClientConfig struct {
	// Gateway is the base URL of the companion gateway,
	// e.g. "http://localhost:8000".
	// Env: CLIENT_GATEWAY_URL, flag: -g
	Gateway string `env:"CLIENT_GATEWAY_URL"`

	// RequestTimeout bounds non-streaming client calls (login, character
	// list, models). The chat stream itself is bounded by StreamTimeout.
	// Env: CLIENT_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"CLIENT_REQUEST_TIMEOUT" envDefault:"15s"`

	// StreamTimeout bounds a single streamed chat turn end to end.
	// Env: CLIENT_STREAM_TIMEOUT
	StreamTimeout time.Duration `env:"CLIENT_STREAM_TIMEOUT" envDefault:"180s"`
}

// GetClientConfig loads the client configuration from environment variables,
// letting the -g and -timeout flags override them.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	gateway := fs.String("g", "", "Gateway base URL")
	timeout := fs.Duration("timeout", 0, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *gateway != "" {
		cfg.Gateway = *gateway
	}
	if *timeout > 0 {
		cfg.RequestTimeout = *timeout
	}

	if cfg.Gateway == "" {
		cfg.Gateway = "http://localhost:8000"
	}

	return cfg, cfg.validate()
}

func (cfg *ClientConfig) validate() error {
	if cfg.RequestTimeout <= 0 || cfg.StreamTimeout <= 0 {
		return ErrInvalidClientConfigs
	}
	return nil
}
