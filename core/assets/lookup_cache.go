// ABOUTME: Optional memo of positive asset lookups over a cache backend
// ABOUTME: Keys are scoped by entry point, reference and root layout

package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"diagnostic-report-api/core/domain"
	"diagnostic-report-api/core/interfaces"
)

// DefaultLookupTTL bounds how long a remembered location is trusted
const DefaultLookupTTL = 5 * time.Minute

// LookupCache remembers where a reference was found. Only hits are stored.
// The resolver re-checks the roots ahead of a remembered hit and the hit
// itself before use, so resolution order is the same as without the cache.
type LookupCache struct {
	backend interfaces.Cache
	ttl     time.Duration
	logger  interfaces.Logger
}

// NewLookupCache wraps a cache backend
func NewLookupCache(backend interfaces.Cache, ttl time.Duration, logger interfaces.Logger) *LookupCache {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &LookupCache{backend: backend, ttl: ttl, logger: logger}
}

// Get returns a remembered asset
func (c *LookupCache) Get(ctx context.Context, key string) (*domain.ResolvedAsset, bool) {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var asset domain.ResolvedAsset
	if err := json.Unmarshal(data, &asset); err != nil || asset.AbsolutePath == "" {
		c.Forget(ctx, key)
		return nil, false
	}
	return &asset, true
}

// Put remembers an asset
func (c *LookupCache) Put(ctx context.Context, key string, asset *domain.ResolvedAsset) {
	data, err := json.Marshal(asset)
	if err != nil {
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil && c.logger != nil {
		c.logger.Debug("Failed to cache asset lookup", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Forget drops a remembered asset
func (c *LookupCache) Forget(ctx context.Context, key string) {
	_ = c.backend.Delete(ctx, key)
}

// lookupKey scopes entries to the entry point, reference and root layout
func lookupKey(entry, reference string, dc domain.DeploymentContext) string {
	sum := sha256.Sum256([]byte(entry + "\x00" + reference + "\x00" + dc.Fingerprint()))
	return "asset:" + entry + ":" + hex.EncodeToString(sum[:16])
}
