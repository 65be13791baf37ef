package database

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Lookup-cache traffic is tiny key/value pairs on the authorization hot
// path; a slow memcached must not stall requests.
const memcachedTimeout = 500 * time.Millisecond

func NewMemcached(server string) *memcache.Client {
	client := memcache.New(server)
	client.Timeout = memcachedTimeout
	client.MaxIdleConns = 16
	return client
}
