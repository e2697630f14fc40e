// Package watchdog keeps an idle deployment cheap: the gateway records a
// last-activity timestamp on every request, a monitor stops the heavyweight
// model containers once the deployment has been idle past a threshold, and a
// wake listener starts them back up on the next visit.
package watchdog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/logger"
)

// activityFileName is the file under the state directory holding the unix
// timestamp of the most recent gateway request.
const activityFileName = "last_activity"

// Activity tracks when the gateway last served a request. The gateway
// process writes through Touch; the monitor process reads through Last.
// The file holds a single decimal unix timestamp so either side can be
// restarted independently.
type Activity struct {
	path   string
	logger *logger.Logger

	mu          sync.Mutex
	lastWritten time.Time
}

// NewActivity returns a tracker backed by the activity file under stateDir.
func NewActivity(stateDir string, logger *logger.Logger) *Activity {
	return &Activity{
		path:   filepath.Join(stateDir, activityFileName),
		logger: logger,
	}
}

// Touch records now as the time of the latest request. Writes are coalesced
// to at most one per second so a chatty client does not turn every request
// into a disk write. Failures are logged and swallowed: activity tracking
// must never fail a request.
func (a *Activity) Touch(now time.Time) {
	a.mu.Lock()
	if now.Sub(a.lastWritten) < time.Second {
		a.mu.Unlock()
		return
	}
	a.lastWritten = now
	a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		a.logger.Warn().Err(err).Str("path", a.path).Msg("creating state directory failed")
		return
	}

	payload := strconv.FormatInt(now.Unix(), 10)
	if err := os.WriteFile(a.path, []byte(payload), 0o644); err != nil {
		a.logger.Warn().Err(err).Str("path", a.path).Msg("writing activity file failed")
	}
}

// Last reads the most recent activity timestamp. A missing or unreadable
// file reports ok=false, which the monitor treats as "no activity yet".
func (a *Activity) Last() (time.Time, bool) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		return time.Time{}, false
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", a.path).Msg("malformed activity file")
		return time.Time{}, false
	}

	return time.Unix(ts, 0), true
}
