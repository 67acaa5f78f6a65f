package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server shared by the catalog cache and
// the rate limiter.
type RedisConfig struct {
	Disabled    bool
	Addr        string
	Password    string
	DB          int
	TLS         bool
	PingTimeout time.Duration
}

// LoadRedisConfig reads REDIS_* variables.  REDIS_HOST and REDIS_PORT
// win over the REDIS_ADDR shorthand when both are set.
func LoadRedisConfig() RedisConfig {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Disabled:    envBool("REDIS_DISABLED", false),
		Addr:        addr,
		Password:    envStr("REDIS_PASSWORD", ""),
		DB:          envInt("REDIS_DB", 0),
		TLS:         strings.EqualFold(envStr("REDIS_TLS", ""), "true") || envStr("REDIS_TLS", "") == "1",
		PingTimeout: envDur("REDIS_PING_TIMEOUT", 2*time.Second),
	}
}

// NewRedisClient connects and pings Redis.  A disabled config returns a
// nil client and no error; callers treat a nil client as "no cache, no
// rate limit".
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Disabled {
		return nil, nil
	}
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
