package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpKeyPrefix = "otp:"
	probeTimeout = 1 * time.Second
)

// Store is an expiring key-value cache. Implementations are safe for
// concurrent use; each call is atomic for its key.
type Store interface {
	// Set stores value under key, replacing any previous entry.
	Set(ctx context.Context, key string, ttl time.Duration, value string) error
	// Get reports ok=false when the key was never set or has expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Delete returns the number of entries removed (0 or 1).
	Delete(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Name() string
}

// Key returns the cache key for a pending OTP.
func Key(mobileNumber string) string {
	return otpKeyPrefix + mobileNumber
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open probes Redis once. If it answers within a second the Redis store is
// used for the lifetime of the process; otherwise an in-process store is
// returned and never swapped back.
func Open(ctx context.Context, opts Options, logger *slog.Logger) Store {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  probeTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := client.Ping(probeCtx).Err(); err != nil {
		_ = client.Close()
		warnFallback(logger, opts.Addr, err)
		return NewMemoryStore()
	}

	logger.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return NewRedisStore(client)
}

func warnFallback(logger *slog.Logger, addr string, err error) {
	banner := strings.Repeat("=", 60)
	logger.Warn(banner)
	logger.Warn("REDIS CONNECTION FAILED. USING IN-MEMORY FALLBACK.", "addr", addr, "error", err)
	logger.Warn("pending OTPs will be lost when the server restarts")
	logger.Warn(banner)
}
