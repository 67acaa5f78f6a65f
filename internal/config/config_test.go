package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "APP_NAME", "STORE_DRIVER", "RECEIPT_DISPATCH", "AUTH_ENABLED", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "PMBIA", cfg.AppName)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, DispatchInline, cfg.ReceiptDispatch)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.ReceiptWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("RECEIPT_DISPATCH", "amqp")
	t.Setenv("AUTH_ENABLED", "yes")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_ISSUER_KEY", "front-end-key")
	t.Setenv("RECEIPT_WORKERS", "0")
	t.Setenv("RECEIPT_TIMEOUT", "3s")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://broker:5672/")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, DispatchAMQP, cfg.ReceiptDispatch)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "front-end-key", cfg.TokenIssuerKey)
	assert.Equal(t, 1, cfg.ReceiptWorkers)
	assert.Equal(t, 3*time.Second, cfg.ReceiptTimeout)
	assert.Equal(t, "amqp://broker:5672/", cfg.RabbitURL)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "twelve")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "perhaps")
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Minute, envDur("X_DUR", time.Minute))
	assert.True(t, envBool("X_BOOL", true))

	t.Setenv("X_BOOL", "off")
	assert.False(t, envBool("X_BOOL", true))
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{DBUser: "app", DBPass: "p@ss", DBHost: "db", DBPort: "3307", DBName: "pmbia"}
	parsed, err := mysql.ParseDSN(cfg.MySQLDSN())
	require.NoError(t, err)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "db:3307", parsed.Addr)
	assert.Equal(t, "pmbia", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 10*time.Second, cfg.TTL)

	t.Setenv("RATE_LIMIT_BURST", "15")
	assert.Equal(t, 15, LoadRateLimitConfig().Capacity)
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, "catalog", cfg.Prefix)
}

func TestLoadRedisConfig_HostPortWins(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

func TestNewRedisClient(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), RedisConfig{Disabled: true})
	assert.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	rdb, err = NewRedisClient(context.Background(), RedisConfig{Addr: mr.Addr(), PingTimeout: time.Second})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), RedisConfig{Addr: addr, PingTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
