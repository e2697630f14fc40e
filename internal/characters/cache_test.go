package characters

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_LoadMiss(t *testing.T) {
	cache := NewMemoryCache()

	_, ok := cache.Load("/characters")
	assert.False(t, ok)
}

func TestMemoryCache_SwapThenLoad(t *testing.T) {
	cache := NewMemoryCache()
	entry := Entry{
		ETag:      `"v1"`,
		Payload:   []byte(`{"characters":[]}`),
		Value:     "decoded",
		FetchedAt: time.Now(),
	}

	cache.Swap("/characters", entry)

	got, ok := cache.Load("/characters")
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestMemoryCache_SwapReplacesWholeEntry(t *testing.T) {
	cache := NewMemoryCache()
	cache.Swap("k", Entry{ETag: `"v1"`, Payload: []byte("old"), Value: 1})
	cache.Swap("k", Entry{ETag: `"v2"`, Value: 2})

	got, ok := cache.Load("k")
	require.True(t, ok)
	assert.Equal(t, `"v2"`, got.ETag)
	assert.Nil(t, got.Payload, "swap must replace, not merge")
}

func TestMemoryCache_ConcurrentReadersAndWriters(t *testing.T) {
	cache := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				etag := fmt.Sprintf(`"v%d-%d"`, i, j)
				cache.Swap("k", Entry{ETag: etag, Value: etag})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if entry, ok := cache.Load("k"); ok {
					// a reader must never observe a half-written entry
					if entry.Value != entry.ETag {
						t.Errorf("torn read: etag %v value %v", entry.ETag, entry.Value)
					}
				}
			}
		}()
	}
	wg.Wait()
}
