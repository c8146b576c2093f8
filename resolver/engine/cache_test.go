package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	resolver_model "github.com/skarin/equipwatch/resolver/model"
)

func TestDecisionCache_GetSet(t *testing.T) {
	cache := NewDecisionCache(4, time.Minute)

	assert.Nil(t, cache.Get("e1|eq-1|read"))

	cache.Set("e1|eq-1|read", resolver_model.AccessDecision{Allowed: true})
	got := cache.Get("e1|eq-1|read")
	assert.NotNil(t, got)
	assert.True(t, got.Allowed)
}

func TestDecisionCache_TTLExpiry(t *testing.T) {
	cache := NewDecisionCache(4, 10*time.Millisecond)

	cache.Set("e1|eq-1|read", resolver_model.AccessDecision{Allowed: true})
	assert.NotNil(t, cache.Get("e1|eq-1|read"))

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, cache.Get("e1|eq-1|read"))
}

func TestDecisionCache_InvalidatePrefix(t *testing.T) {
	cache := NewDecisionCache(8, time.Minute)

	cache.Set("e1|eq-1|read", resolver_model.AccessDecision{Allowed: true})
	cache.Set("e1|eq-2|write", resolver_model.AccessDecision{Allowed: false})
	cache.Set("e2|eq-1|read", resolver_model.AccessDecision{Allowed: true})

	cache.InvalidatePrefix("e1|")

	assert.Nil(t, cache.Get("e1|eq-1|read"))
	assert.Nil(t, cache.Get("e1|eq-2|write"))
	assert.NotNil(t, cache.Get("e2|eq-1|read"))
}

func TestDecisionCache_EvictsWhenFull(t *testing.T) {
	cache := NewDecisionCache(2, time.Minute)

	cache.Set("a", resolver_model.AccessDecision{Allowed: true})
	cache.Set("b", resolver_model.AccessDecision{Allowed: true})
	cache.Set("c", resolver_model.AccessDecision{Allowed: true})

	assert.Nil(t, cache.Get("a"))
	assert.Nil(t, cache.Get("b"))
	assert.NotNil(t, cache.Get("c"))
}
