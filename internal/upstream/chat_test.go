package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

func chatServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			io.WriteString(w, line+"\n")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestChatClient(url string) *ChatClient {
	cfg := config.Upstream{ChatAPIURL: url, ChatTimeout: 5 * time.Second}
	return NewChatClient(cfg, logger.Nop())
}

func drain(t *testing.T, stream *Stream) []string {
	t.Helper()
	var deltas []string
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return deltas
		}
		require.NoError(t, err)
		deltas = append(deltas, delta)
	}
}

func testMessages() []models.ChatMessage {
	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: "You are Cathy."},
		{Role: models.RoleUserMsg, Content: "hi"},
	}
}

func TestStream_DeltaChunks(t *testing.T) {
	srv := chatServer(t, []string{
		`{"message":{"role":"assistant","content":"Hel"},"done":false}`,
		`{"message":{"role":"assistant","content":"lo!"},"done":false}`,
		`{"message":{"role":"assistant","content":""},"done":true}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, "Hel lo!", strings.Join(deltas, " "))
	assert.Equal(t, "Hello!", strings.Join(deltas, ""))
}

func TestStream_CumulativeSnapshotsNoDuplication(t *testing.T) {
	srv := chatServer(t, []string{
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":"Hello there"},"done":false}`,
		`{"message":{"role":"assistant","content":"Hello there!"},"done":true}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, "Hello there!", strings.Join(deltas, ""),
		"concatenated deltas must equal the final transcript exactly once")
}

func TestStream_RepeatedSnapshotEmitsNothing(t *testing.T) {
	srv := chatServer(t, []string{
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":"Hello"},"done":true}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, []string{"Hello"}, deltas)
}

func TestStream_NonPrefixContentEmittedWhole(t *testing.T) {
	srv := chatServer(t, []string{
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":" world"},"done":true}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, "Hello world", strings.Join(deltas, ""))
}

func TestStream_DataPrefixAndDoneMarker(t *testing.T) {
	srv := chatServer(t, []string{
		`data: {"message":{"role":"assistant","content":"Hi"},"done":false}`,
		``,
		`data: [DONE]`,
		`{"message":{"role":"assistant","content":"never reached"},"done":false}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, []string{"Hi"}, deltas)
}

func TestStream_MalformedChunkSkipped(t *testing.T) {
	srv := chatServer(t, []string{
		`{"message":{"role":"assistant","content":"Hi"},"done":false}`,
		`{not json at all`,
		`{"message":{"role":"assistant","content":"Hi!"},"done":true}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, "Hi!", strings.Join(deltas, ""))
}

func TestStream_TokenFallbackField(t *testing.T) {
	srv := chatServer(t, []string{
		`{"token":"Hel"}`,
		`{"token":"lo"}`,
		`{"done":true}`,
	})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.Equal(t, "Hello", strings.Join(deltas, ""))
}

func TestStream_NonStreamingFallback(t *testing.T) {
	var sawNonStreaming bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Stream {
			http.Error(w, "streaming unsupported", http.StatusBadRequest)
			return
		}
		sawNonStreaming = true
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"reply":"full reply text"}`)
	}))
	defer srv.Close()

	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	deltas := drain(t, stream)
	assert.True(t, sawNonStreaming)
	assert.Equal(t, []string{"full reply text"}, deltas)
}

func TestStream_FallbackAlsoFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestChatClient(srv.URL)

	_, err := client.Stream(context.Background(), "llama3", testMessages())
	assert.ErrorIs(t, err, ErrChatUpstream)
}

func TestStream_Unreachable(t *testing.T) {
	srv := chatServer(t, nil)
	srv.Close()

	client := newTestChatClient(srv.URL)

	_, err := client.Stream(context.Background(), "llama3", testMessages())
	assert.ErrorIs(t, err, ErrChatUpstream)
}

func TestStream_NotConfigured(t *testing.T) {
	client := NewChatClient(config.Upstream{}, logger.Nop())

	_, err := client.Stream(context.Background(), "llama3", testMessages())
	assert.ErrorIs(t, err, ErrChatNotConfigured)
}

func TestStream_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"role":"assistant","content":"Hi"},"done":false}`+"\n")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(ctx, "llama3", testMessages())
	require.NoError(t, err)
	defer stream.Close()

	delta, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hi", delta)

	cancel()

	_, err = stream.Recv()
	assert.Error(t, err, "a cancelled stream must stop instead of blocking")
	assert.NotErrorIs(t, err, io.EOF)
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	srv := chatServer(t, []string{`{"message":{"role":"assistant","content":"Hi"},"done":true}`})
	client := newTestChatClient(srv.URL)

	stream, err := client.Stream(context.Background(), "llama3", testMessages())
	require.NoError(t, err)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
