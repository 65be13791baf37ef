package database

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	gocache "github.com/patrickmn/go-cache"
)

// LookupCache is a small shared cache for hot existence lookups. It is
// strictly an optimization; a miss or a backend error just falls through
// to the database.
type LookupCache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
	Delete(key string)
}

// MemcachedCache backs LookupCache with a shared memcached instance, for
// deployments running more than one replica.
type MemcachedCache struct {
	client *memcache.Client
}

func NewMemcachedCache(client *memcache.Client) *MemcachedCache {
	return &MemcachedCache{client: client}
}

func (c *MemcachedCache) Get(key string) (string, bool) {
	item, err := c.client.Get(key)
	if err != nil {
		return "", false
	}
	return string(item.Value), true
}

func (c *MemcachedCache) Set(key string, value string, ttl time.Duration) {
	_ = c.client.Set(&memcache.Item{
		Key:        key,
		Value:      []byte(value),
		Expiration: int32(ttl.Seconds()),
	})
}

func (c *MemcachedCache) Delete(key string) {
	_ = c.client.Delete(key)
}

// LocalCache is the in-process fallback when no memcached is configured.
type LocalCache struct {
	cache *gocache.Cache
}

func NewLocalCache() *LocalCache {
	return &LocalCache{
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

func (c *LocalCache) Get(key string) (string, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *LocalCache) Set(key string, value string, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

func (c *LocalCache) Delete(key string) {
	c.cache.Delete(key)
}
