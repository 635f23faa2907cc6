package locking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient accepts host:port as well as redis:// and rediss:// URLs. Credentials,
// database and TLS come from the URL; a non-empty password or non-zero db overrides them.
func NewRedisClient(addr, password string, db int, log zerolog.Logger) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("addr", opts.Addr).Msg("redis connection established")
	}
	return client, nil
}

type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client, prefix: "woosync:sync-lock:"}
}

func (l *RedisLocker) key(storeID uuid.UUID) string {
	return l.prefix + storeID.String()
}

func (l *RedisLocker) Acquire(ctx context.Context, storeID uuid.UUID, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(storeID), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &redisLease{client: l.client, key: l.key(storeID), token: token}, nil
}

type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}
