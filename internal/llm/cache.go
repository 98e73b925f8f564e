package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type cacheEntry struct {
	at    time.Time
	value string
}

// responseCache memoizes non-streaming completions for a short TTL.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(model, system, user string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{':'})
	h.Write([]byte(system))
	h.Write([]byte{':'})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *responseCache) get(model, system, user string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey(model, system, user)
	e, ok := c.entries[k]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.at) >= c.ttl {
		delete(c.entries, k)
		return "", false
	}
	return e.value, true
}

func (c *responseCache) put(model, system, user, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(model, system, user)] = cacheEntry{at: c.now(), value: value}
}
