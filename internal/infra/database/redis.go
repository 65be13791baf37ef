package database

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// NewRedis builds the shared client used for login rate limiting and the
// event pub/sub channel.
func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		ClientName:  "saas-admin",
		DialTimeout: redisDialTimeout,
	})
}
