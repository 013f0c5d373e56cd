package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a verified token is trusted without
// asking the verifier again.
const DefaultCacheTTL = 5 * time.Minute

type cachedClaims struct {
	claims  *UserClaims
	expires time.Time
}

// CachingVerifier remembers verified tokens so a streaming dashboard or a
// burst of writes does not re-verify the same token on every call.
type CachingVerifier struct {
	next Verifier
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedClaims // keyed by token hash
}

// NewCachingVerifier wraps next with a TTL cache.
func NewCachingVerifier(next Verifier, ttl time.Duration) *CachingVerifier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingVerifier{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedClaims),
	}
}

// HashToken computes the SHA-256 hex digest of a raw token.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// VerifyToken returns cached claims when present, otherwise verifies and caches.
func (c *CachingVerifier) VerifyToken(ctx context.Context, idToken string) (*UserClaims, error) {
	key := HashToken(idToken)
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.claims, nil
	}

	claims, err := c.next.VerifyToken(ctx, idToken)
	if err != nil {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return nil, err
	}

	expires := now.Add(c.ttl)
	if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(expires) {
		expires = claims.ExpiresAt
	}

	c.mu.Lock()
	c.entries[key] = cachedClaims{claims: claims, expires: expires}
	c.mu.Unlock()
	return claims, nil
}

// Forget drops every cached token of uid.
func (c *CachingVerifier) Forget(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.claims.UID == uid {
			delete(c.entries, key)
		}
	}
}

// Sweep removes expired entries. It returns how many were removed.
func (c *CachingVerifier) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
