package scopelock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var extendScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

type RedisConfig struct {
	Addr   string
	Prefix string
	// TTL bounds how long a crashed holder can block a scope. A live holder
	// renews it every TTL/3 until unlock.
	TTL  time.Duration
	Poll time.Duration
}

// Redis is a Locker shared by every gateway replica.
type Redis struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

func NewRedis(log *logger.Logger, cfg RedisConfig) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(log, rdb, cfg), nil
}

func NewRedisWithClient(log *logger.Logger, rdb *goredis.Client, cfg RedisConfig) *Redis {
	if cfg.Prefix == "" {
		cfg.Prefix = "arm-gateway:lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 25 * time.Millisecond
	}
	return &Redis{
		log:    log.With("service", "RedisScopeLock"),
		rdb:    rdb,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		poll:   cfg.Poll,
	}
}

// Lock polls SET NX until the scope is free or ctx ends.
func (l *Redis) Lock(ctx context.Context, scope string) (func(), error) {
	key := l.prefix + scope
	token := uuid.NewString()
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	stop := make(chan struct{})
	renewed := make(chan struct{})
	go l.renew(key, token, stop, renewed)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-renewed
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil && err != goredis.Nil {
				l.log.Warn("scope lock release failed", "scope", key, "error", err)
			}
		})
	}, nil
}

// renew keeps the key alive while its holder works. It gives up once the
// key no longer carries token.
func (l *Redis) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		n, err := extendScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
		cancel()
		if err != nil {
			l.log.Warn("scope lock renew failed", "scope", key, "error", err)
			continue
		}
		if n == 0 {
			l.log.Warn("scope lock lost", "scope", key)
			return
		}
	}
}

func (l *Redis) Close() error {
	return l.rdb.Close()
}
