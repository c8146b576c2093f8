package engine

import (
	"strings"
	"sync"
	"time"

	resolver_model "github.com/skarin/equipwatch/resolver/model"
)

// DecisionCache keeps recent access decisions in memory. Entries expire
// on a short TTL; grant mutations invalidate the affected principal's
// entries immediately, so the TTL only bounds staleness for hierarchy
// edits made behind the resolver's back.
type DecisionCache struct {
	mu      sync.RWMutex
	entries map[string]resolver_model.CacheEntry
	size    int
	ttl     time.Duration
}

func NewDecisionCache(size int, ttl time.Duration) *DecisionCache {
	return &DecisionCache{
		entries: make(map[string]resolver_model.CacheEntry),
		size:    size,
		ttl:     ttl,
	}
}

func (c *DecisionCache) Get(key string) *resolver_model.AccessDecision {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil
	}
	decision := entry.Decision
	return &decision
}

func (c *DecisionCache) Set(key string, decision resolver_model.AccessDecision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.size {
		// Full cache: drop everything rather than track recency.
		c.entries = make(map[string]resolver_model.CacheEntry)
	}
	c.entries[key] = resolver_model.CacheEntry{
		Decision:  decision,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

func (c *DecisionCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *DecisionCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]resolver_model.CacheEntry)
}
