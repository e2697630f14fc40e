// Package sessionlog persists conversation events as per-session NDJSON
// files. Appending is strictly best-effort: persistence failures are logged
// and swallowed, never surfaced into the chat flow.
package sessionlog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

// Source tags every event written by this process.
const Source = "gateway"

// Appender writes session events under
// <stateDir>/sessions/<person_id>/<char_id>/<session_id>.ndjson, one JSON
// object per line, append-only. Colons in path components are replaced by
// underscores for filesystem safety.
//
// The design assumes a single process appends to a given session file at a
// time; the in-process session registry enforces one active turn per
// session.
type Appender struct {
	stateDir string
	logger   *logger.Logger
}

func NewAppender(stateDir string, logger *logger.Logger) *Appender {
	return &Appender{stateDir: stateDir, logger: logger}
}

// Append records one event. It never returns an error: disk, permission,
// and serialization failures are logged as warnings and swallowed so that
// logging can never interrupt a chat turn.
func (a *Appender) Append(ctx context.Context, event models.Event) {
	log := logger.FromContext(ctx)

	if event.TS == 0 {
		event.TS = time.Now().Unix()
	}
	if event.Source == "" {
		event.Source = Source
	}
	event.Len = len(event.Text)

	personID := pathComponent(event.PersonID, "unknown_person")
	charID := pathComponent(event.CharID, "unknown_char")
	sessionID := pathComponent(event.SessionID, "unknown_session")

	dir := filepath.Join(a.stateDir, "sessions", personID, charID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to create session log directory")
		return
	}

	line, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to serialize session event")
		return
	}

	file := filepath.Join(dir, sessionID+".ndjson")
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to open session log file")
		return
	}
	defer f.Close()

	if _, err = f.Write(append(line, '\n')); err != nil {
		log.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to append session event")
	}
}

// pathComponent makes an identifier safe for use as a path element:
// colons become underscores, path separators are rejected entirely.
func pathComponent(id, fallback string) string {
	if id == "" {
		return fallback
	}
	id = strings.ReplaceAll(id, ":", "_")
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fallback
	}
	return id
}
