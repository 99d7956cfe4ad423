package rediswr

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const codeLockFailed = "LOCK_FAILED"

const (
	defaultLeaseTTL      = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
)

// release deletes the lease only while it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a per-key lease lock on Redis. A lease expires after
// Config.LeaseTTL even if its holder never releases it.
type Locker struct {
	client   redis.Cmdable
	prefix   string
	ttl      time.Duration
	interval time.Duration
}

// NewLocker creates a Locker on client. A non-positive LeaseTTL or
// RetryInterval falls back to 30s and 50ms.
func NewLocker(client redis.Cmdable, cfg Config) *Locker {
	l := &Locker{
		client:   client,
		prefix:   cfg.KeyPrefix,
		ttl:      cfg.LeaseTTL,
		interval: cfg.RetryInterval,
	}
	if l.ttl <= 0 {
		l.ttl = defaultLeaseTTL
	}
	if l.interval <= 0 {
		l.interval = defaultRetryInterval
	}
	return l
}

// Lock polls until the lease on key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	name := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return nil, errx.Wrap(err, errx.WithCode(codeLockFailed), errx.WithDetails(errx.D{"key": name}))
		}
		if ok {
			return func() {
				_ = release.Run(context.WithoutCancel(ctx), l.client, []string{name}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, errx.Wrap(ctx.Err(), errx.WithCode(codeLockFailed), errx.WithDetails(errx.D{"key": name}))
		case <-ticker.C:
		}
	}
}
