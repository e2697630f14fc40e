package sessionlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

func testEvent(sender, text string) models.Event {
	return models.Event{
		SessionID: "gateway:abc123",
		PersonID:  "person-1",
		CharID:    "cathy",
		Sender:    sender,
		Text:      text,
	}
}

func readLines(t *testing.T, path string) []models.Event {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []models.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event models.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event), "every line must be valid JSON")
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestAppend_KEventsKLines(t *testing.T) {
	stateDir := t.TempDir()
	appender := NewAppender(stateDir, logger.Nop())
	ctx := context.Background()

	const k = 7
	for i := 0; i < k; i++ {
		appender.Append(ctx, testEvent("user", fmt.Sprintf("message %d", i)))
	}

	// colon in the session id becomes an underscore in the file name
	path := filepath.Join(stateDir, "sessions", "person-1", "cathy", "gateway_abc123.ndjson")
	events := readLines(t, path)

	require.Len(t, events, k)
	for i, event := range events {
		assert.Equal(t, fmt.Sprintf("message %d", i), event.Text, "events must appear in append order")
		assert.Equal(t, "gateway:abc123", event.SessionID, "the logged id keeps its original form")
		assert.Equal(t, Source, event.Source)
		assert.NotZero(t, event.TS)
		assert.Equal(t, len(event.Text), event.Len)
	}
}

func TestAppend_MissingIDsUseFallbacks(t *testing.T) {
	stateDir := t.TempDir()
	appender := NewAppender(stateDir, logger.Nop())

	appender.Append(context.Background(), models.Event{Sender: "system", Text: "boot"})

	path := filepath.Join(stateDir, "sessions", "unknown_person", "unknown_char", "unknown_session.ndjson")
	events := readLines(t, path)
	require.Len(t, events, 1)
}

func TestAppend_TraversalAttemptIsContained(t *testing.T) {
	stateDir := t.TempDir()
	appender := NewAppender(stateDir, logger.Nop())

	event := testEvent("user", "hi")
	event.PersonID = "../../etc"
	appender.Append(context.Background(), event)

	_, err := os.Stat(filepath.Join(stateDir, "sessions", "unknown_person", "cathy", "gateway_abc123.ndjson"))
	assert.NoError(t, err, "a traversal attempt must land in the fallback directory")

	outside := filepath.Join(stateDir, "..", "..")
	entries, _ := os.ReadDir(outside)
	for _, e := range entries {
		assert.NotEqual(t, "etc", e.Name())
	}
}

func TestAppend_FailureIsSwallowed(t *testing.T) {
	// state dir is a file, so MkdirAll must fail
	stateFile := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(stateFile, []byte("x"), 0o644))

	appender := NewAppender(stateFile, logger.Nop())

	assert.NotPanics(t, func() {
		appender.Append(context.Background(), testEvent("user", "hi"))
	})
}

func TestAppend_PreservesUnicode(t *testing.T) {
	stateDir := t.TempDir()
	appender := NewAppender(stateDir, logger.Nop())

	appender.Append(context.Background(), testEvent("assistant", "nyaa~ 🐾"))

	path := filepath.Join(stateDir, "sessions", "person-1", "cathy", "gateway_abc123.ndjson")
	events := readLines(t, path)
	require.Len(t, events, 1)
	assert.Equal(t, "nyaa~ 🐾", events[0].Text)
	assert.Equal(t, len("nyaa~ 🐾"), events[0].Len)
}
