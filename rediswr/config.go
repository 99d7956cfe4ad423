package rediswr

import "time"

// Config defines the Redis connection and lease settings.
type Config struct {
	// Addrs is the list of Redis server addresses in the format "host:port,host2:port2".
	Addrs string `yaml:"addrs"`

	// Username is the username for the Redis server/cluster.
	Username string `yaml:"username"`

	// Password is the password for the Redis server/cluster.
	Password string `yaml:"password" mask:"true"`

	// IsClusterMode indicates whether the Redis server is a Redis cluster.
	IsClusterMode bool `yaml:"is_cluster_mode"`

	// KeyPrefix namespaces the lease keys.
	KeyPrefix string `yaml:"key_prefix" default:"filedepot:manifest-lock:"`

	// LeaseTTL bounds how long a crashed holder keeps a group locked.
	LeaseTTL time.Duration `yaml:"lease_ttl" default:"30s"`

	// RetryInterval is the wait between acquire attempts.
	RetryInterval time.Duration `yaml:"retry_interval" default:"50ms"`
}
