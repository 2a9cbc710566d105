package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/platform/scopelock"
)

type Clients struct {
	// Locker serializes template reordering per suite. Redis-backed when
	// REDIS_ADDR is set so replicas share it.
	Locker scopelock.Locker
	close  []func() error
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set; using in-process scope lock")
		return Clients{Locker: scopelock.NewLocal()}, nil
	}
	lock, err := scopelock.NewRedis(log, scopelock.RedisConfig{
		Addr: cfg.Redis.Addr,
		TTL:  cfg.Redis.LockTTL,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis scope lock: %w", err)
	}
	return Clients{Locker: lock, close: []func() error{lock.Close}}, nil
}

func (c Clients) Close() error {
	var first error
	for _, fn := range c.close {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
