package characters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

const testRosterPayload = `{"characters":[{"id":"cathy","name":"Cathy Winters","model":"llama3"}]}`

// rosterServer serves /characters with a fixed ETag and honors
// If-None-Match. It counts full (200) responses so tests can assert that
// revalidation hits the cache.
func rosterServer(t *testing.T, etag string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var fullResponses atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/characters":
			if r.Header.Get("If-None-Match") == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			fullResponses.Add(1)
			w.Header().Set("ETag", etag)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(testRosterPayload))
		case "/characters/cathy":
			w.Header().Set("ETag", etag)
			w.Write([]byte(`{"id":"cathy","name":"Cathy Winters","system_prompt":"You are Cathy.","character_background":"Sea."}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv, &fullResponses
}

func newTestRemoteProvider(url string, cache Cache) *RemoteProvider {
	cfg := config.Characters{APIURL: url, APIKey: "test-key"}
	return NewRemoteProvider(cfg, cache, logger.Nop())
}

func TestRemoteProvider_List_FetchAndRevalidate(t *testing.T) {
	srv, fullResponses := rosterServer(t, `"v1"`)
	cache := NewMemoryCache()
	provider := newTestRemoteProvider(srv.URL, cache)

	first, err := provider.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "cathy", first[0].ID)

	// second fetch revalidates: 304, served from cache without re-parse
	second, err := provider.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fullResponses.Load(), "matching ETag must not trigger a full response")

	entry, ok := cache.Load("/characters")
	require.True(t, ok)
	assert.Equal(t, `"v1"`, entry.ETag)
	assert.Equal(t, testRosterPayload, string(entry.Payload))
}

func TestRemoteProvider_List_SendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{"characters":[]}`))
	}))
	defer srv.Close()

	provider := newTestRemoteProvider(srv.URL, NewMemoryCache())

	_, err := provider.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
}

func TestRemoteProvider_List_FallsBackToCacheOnError(t *testing.T) {
	srv, _ := rosterServer(t, `"v1"`)
	cache := NewMemoryCache()
	provider := newTestRemoteProvider(srv.URL, cache)

	first, err := provider.List(context.Background())
	require.NoError(t, err)

	// source goes away; last-known-good roster must still be served
	srv.Close()

	second, err := provider.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRemoteProvider_List_ErrorWithEmptyCache(t *testing.T) {
	srv, _ := rosterServer(t, `"v1"`)
	srv.Close()

	provider := newTestRemoteProvider(srv.URL, NewMemoryCache())

	_, err := provider.List(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRemoteProvider_List_ServerErrorFallsBackToCache(t *testing.T) {
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(testRosterPayload))
	}))
	defer srv.Close()

	cache := NewMemoryCache()
	provider := newTestRemoteProvider(srv.URL, cache)

	first, err := provider.List(context.Background())
	require.NoError(t, err)

	failing.Store(true)

	second, err := provider.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRemoteProvider_Get(t *testing.T) {
	srv, _ := rosterServer(t, `"v1"`)
	provider := newTestRemoteProvider(srv.URL, NewMemoryCache())

	t.Run("private view", func(t *testing.T) {
		character, err := provider.Get(context.Background(), "cathy", models.ViewPrivate)
		require.NoError(t, err)
		assert.Equal(t, "You are Cathy.", character.SystemPrompt)
	})

	t.Run("public view strips prompt", func(t *testing.T) {
		character, err := provider.Get(context.Background(), "cathy", models.ViewPublic)
		require.NoError(t, err)
		assert.Empty(t, character.SystemPrompt)
		assert.Empty(t, character.Background)
		assert.Equal(t, "Cathy Winters", character.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := provider.Get(context.Background(), "ghost", models.ViewPublic)
		assert.ErrorIs(t, err, ErrCharacterNotFound)
	})
}
