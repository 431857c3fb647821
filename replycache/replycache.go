// Package replycache memoizes facade replies per backend and prompt.
package replycache

import (
	"context"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/martinemde/aiface/unifiedllm"
)

// Cache holds recent non-empty replies.
type Cache struct {
	cache *cache.Cache
}

// New creates a Cache whose entries expire after ttl. Expired entries are
// purged every cleanup interval.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{cache: cache.New(ttl, cleanup)}
}

// key identifies the backend by provider, adapter, model and base URL so one
// Cache can be shared by facades with different configs.
func key(call unifiedllm.Call) string {
	return strings.Join([]string{
		string(call.Provider), call.Adapter, call.Model, call.BaseURL, call.Prompt,
	}, "\x00")
}

// Middleware returns a facade middleware that answers repeated prompts from
// the cache. Errors and empty replies are never stored.
func (c *Cache) Middleware() unifiedllm.Middleware {
	return func(ctx context.Context, call unifiedllm.Call, next unifiedllm.CallFunc) (string, error) {
		k := key(call)
		if cached, found := c.cache.Get(k); found {
			return cached.(string), nil
		}

		text, err := next(ctx, call)
		if err == nil && text != "" {
			c.cache.SetDefault(k, text)
		}
		return text, err
	}
}

// Len returns the number of cached replies, including expired ones not yet
// purged.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached reply.
func (c *Cache) Flush() {
	c.cache.Flush()
}
