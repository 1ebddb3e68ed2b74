package jsonbearer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// expirySafetyMargin is subtracted from a token's lifetime so a token that is
// about to lapse mid-request is treated as already expired.
const expirySafetyMargin = 30 * time.Second

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

func (t cachedToken) valid(now time.Time) bool {
	return t.accessToken != "" && now.Before(t.expiresAt)
}

// tokenCache is a best-effort in-process cache of bearer tokens keyed by
// credential ID. It only avoids re-authenticating on immediately-subsequent
// dispatches; correctness never depends on it, since a stale token is
// recovered from by re-authenticating on a 401.
type tokenCache struct {
	mu     sync.RWMutex
	tokens map[uuid.UUID]cachedToken
}

func newTokenCache() *tokenCache {
	return &tokenCache{
		tokens: make(map[uuid.UUID]cachedToken),
	}
}

func (c *tokenCache) get(credentialID uuid.UUID) (string, bool) {
	c.mu.RLock()
	token, ok := c.tokens[credentialID]
	c.mu.RUnlock()

	if !ok || !token.valid(time.Now()) {
		return "", false
	}
	return token.accessToken, true
}

func (c *tokenCache) put(credentialID uuid.UUID, accessToken string, expiresIn time.Duration) {
	expiresAt := time.Now().Add(expiresIn - expirySafetyMargin)

	c.mu.Lock()
	c.tokens[credentialID] = cachedToken{accessToken: accessToken, expiresAt: expiresAt}
	c.mu.Unlock()
}

func (c *tokenCache) invalidate(credentialID uuid.UUID) {
	c.mu.Lock()
	delete(c.tokens, credentialID)
	c.mu.Unlock()
}
