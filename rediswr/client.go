// Package rediswr connects to Redis and provides a lease lock used to order
// manifest writes across service replicas.
package rediswr

import (
	"strings"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(cfg Config) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:         strings.Split(cfg.Addrs, ","),
		Username:      cfg.Username,
		Password:      cfg.Password,
		IsClusterMode: cfg.IsClusterMode,
	})
}
