package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
)

func TestHash_MatchesDirectSHA256(t *testing.T) {
	data := []byte("roster payload")

	want := sha256.Sum256(data)
	got := Hash(data)

	if hex.EncodeToString(got) != hex.EncodeToString(want[:]) {
		t.Errorf("pooled hash differs from direct SHA-256: %x vs %x", got, want)
	}
}

func TestHash_Deterministic(t *testing.T) {
	data := []byte("same input")

	first := Hash(data)
	second := Hash(data)

	if hex.EncodeToString(first) != hex.EncodeToString(second) {
		t.Error("expected identical digests for identical input")
	}
}

func TestHash_Concurrent(t *testing.T) {
	data := []byte("concurrent input")
	want := hex.EncodeToString(Hash(data))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := hex.EncodeToString(Hash(data)); got != want {
				t.Errorf("concurrent hash mismatch: %s", got)
			}
		}()
	}
	wg.Wait()
}

func TestHashString(t *testing.T) {
	want := sha256.Sum256([]byte("abc"))

	if got := HashString("abc"); got != hex.EncodeToString(want[:]) {
		t.Errorf("unexpected digest: %s", got)
	}
}

func TestETag_QuotedAndStable(t *testing.T) {
	payload := []byte(`[{"id":"cathy"}]`)

	tag := ETag(payload)
	if !strings.HasPrefix(tag, `"`) || !strings.HasSuffix(tag, `"`) {
		t.Errorf("expected quoted entity tag, got %s", tag)
	}
	if tag != ETag(payload) {
		t.Error("expected stable entity tag for identical payload")
	}
	if tag == ETag([]byte(`[{"id":"nova"}]`)) {
		t.Error("expected different entity tags for different payloads")
	}
}
