package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// CacheHeader reports whether a response was served from cache.
const CacheHeader = "X-Cache"

const (
	metaStoreKey = "planner_meta"
	cacheHitKey  = "cache_hit"
	elapsedKey   = "processing_time_ms"
)

type metaStore struct {
	started time.Time
	values  map[string]interface{}
}

// WithResponseMeta attaches a metadata store to each request. Handlers fill it
// through SetMeta and SetCacheHit and hand it to the response via ExtractMeta.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStoreKey, &metaStore{started: time.Now(), values: map[string]interface{}{}})
		c.Next()
	}
}

// SetMeta stores a single metadata value for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	store := lookupMeta(c)
	if store == nil {
		store = &metaStore{started: time.Now(), values: map[string]interface{}{}}
		c.Set(metaStoreKey, store)
	}
	store.values[key] = value
}

// SetCacheHit flags whether the payload came from cache and mirrors it in CacheHeader.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
	state := "MISS"
	if hit {
		state = "HIT"
	}
	c.Header(CacheHeader, state)
}

// ExtractMeta snapshots the stored metadata, stamping the elapsed handler time.
// It returns nil when nothing was recorded for the request.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	store := lookupMeta(c)
	if store == nil {
		return nil
	}
	out := make(map[string]interface{}, len(store.values)+1)
	for k, v := range store.values {
		out[k] = v
	}
	out[elapsedKey] = time.Since(store.started).Milliseconds()
	return out
}

func lookupMeta(c *gin.Context) *metaStore {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(metaStoreKey)
	if !ok {
		return nil
	}
	store, _ := raw.(*metaStore)
	return store
}
