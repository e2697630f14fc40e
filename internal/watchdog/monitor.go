package watchdog

import (
	"context"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
)

// Monitor stops the configured containers once the gateway has been idle
// past the threshold. It implements the background worker contract: Run
// blocks, ticking at the configured interval.
type Monitor struct {
	activity   *Activity
	containers ContainerManager
	cfg        config.WatchdogConfig

	// now is replaceable in tests.
	now func() time.Time

	// stoppedAt is the zero time while the containers are (believed)
	// running. It prevents re-stopping every tick once idle.
	stoppedAt time.Time

	logger *logger.Logger
}

func NewMonitor(activity *Activity, containers ContainerManager, cfg config.WatchdogConfig, logger *logger.Logger) *Monitor {
	return &Monitor{
		activity:   activity,
		containers: containers,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

func (m *Monitor) Run() {
	m.logger.Info().
		Dur("idle_timeout", m.cfg.IdleTimeout).
		Dur("check_interval", m.cfg.CheckInterval).
		Strs("containers", m.cfg.Containers).
		Msg("idle monitor running")

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.tick()
	}
}

func (m *Monitor) tick() {
	last, ok := m.activity.Last()
	if !ok {
		// No requests recorded yet; nothing to base a decision on.
		return
	}

	now := m.now()

	if last.After(m.stoppedAt) {
		// Fresh activity since the last stop: the wake listener (or an
		// operator) brought the containers back.
		m.stoppedAt = time.Time{}
	}

	if !m.stoppedAt.IsZero() || now.Sub(last) < m.cfg.IdleTimeout {
		return
	}

	m.logger.Info().Time("last_activity", last).Msg("idle threshold reached, stopping containers")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, name := range m.cfg.Containers {
		if err := m.containers.StopContainer(ctx, name); err != nil {
			m.logger.Err(err).Str("container", name).Msg("stopping container failed")
			continue
		}
		m.logger.Info().Str("container", name).Msg("container stopped")
	}

	m.stoppedAt = now
}
