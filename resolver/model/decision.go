package model

import (
	"time"

	"github.com/skarin/equipwatch/model"
)

// AccessDecision is the outcome of one access check. MatchedLevel names
// the first grant scope that decided the outcome, empty when no grant
// matched at any level.
type AccessDecision struct {
	Allowed      bool             `json:"allowed"`
	MatchedLevel model.ScopeLevel `json:"matched_level,omitempty"`
	Reason       string           `json:"reason,omitempty"`
}

type CacheEntry struct {
	Decision  AccessDecision
	ExpiresAt time.Time
}
