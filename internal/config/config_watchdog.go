package config

import (
	"flag"
	"time"
)

// WatchdogConfig configures the idle watchdog binary: where the activity
// file lives, which containers to manage, and how the wake listener probes
// the gateway after a restart.
type WatchdogConfig struct {
	StateDir string `env:"STATE_DIR" envDefault:"/state"`

	// IdleTimeout is how long the deployment may sit without requests
	// before the containers are stopped.
	IdleTimeout time.Duration `env:"WATCHDOG_IDLE_TIMEOUT" envDefault:"5m"`

	CheckInterval time.Duration `env:"WATCHDOG_CHECK_INTERVAL" envDefault:"1m"`

	// Containers are the Docker container names to stop and start.
	Containers []string `env:"WATCHDOG_CONTAINERS" envSeparator:","`

	DockerSocket string `env:"WATCHDOG_DOCKER_SOCKET" envDefault:"/var/run/docker.sock"`

	// WakeAddress is the listen address of the wake endpoint. Empty
	// disables the wake listener.
	WakeAddress string `env:"WATCHDOG_WAKE_ADDRESS"`

	// ProbeURL is polled after a wake until it answers 2xx, typically the
	// gateway's /health endpoint.
	ProbeURL string `env:"WATCHDOG_PROBE_URL"`

	WakeTimeout time.Duration `env:"WATCHDOG_WAKE_TIMEOUT" envDefault:"90s"`
}

func GetWatchdogConfig(args []string) (*WatchdogConfig, error) {
	cfg := &WatchdogConfig{}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("watchdog", flag.ContinueOnError)
	stateDir := fs.String("state-dir", "", "State directory with the activity file")
	idle := fs.Duration("idle", 0, "Idle timeout before containers are stopped")
	interval := fs.Duration("interval", 0, "Activity check interval")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *stateDir != "" {
		cfg.StateDir = *stateDir
	}
	if *idle > 0 {
		cfg.IdleTimeout = *idle
	}
	if *interval > 0 {
		cfg.CheckInterval = *interval
	}

	if len(cfg.Containers) == 0 {
		return nil, ErrInvalidWatchdogConfigs
	}

	return cfg, nil
}
