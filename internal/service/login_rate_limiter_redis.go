package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ventana fija por IP. Si la clave quedo sin TTL (p.ej. un EXPIRE perdido) se lo vuelve a poner.
// Devuelve {intentos, ttl restante en ms}.
const redisLoginAttemptScript = `
local attempts = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {attempts, ttl}
`

const (
	loginAttemptKeyPrefix = "login:rl:"
	redisLimiterTimeout   = 500 * time.Millisecond
)

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisLoginRateLimiter struct {
	logger *zap.Logger
	client redisEvaler
	window time.Duration
	max    int
}

// NewRedisLoginRateLimiter comparte el cupo de login entre replicas.
// Si Redis no responde el login no se bloquea.
func NewRedisLoginRateLimiter(logger *zap.Logger, client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window < time.Second {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		logger: logger,
		client: client,
		window: window,
		max:    max,
	}
}

func (l *redisLoginRateLimiter) Allow(ctx context.Context, clientIP string) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	ip := normalizeClientIP(clientIP)
	if ip == "" {
		return false, l.window
	}

	ctx, cancel := context.WithTimeout(ctx, redisLimiterTimeout)
	defer cancel()

	res, err := l.client.Eval(ctx, redisLoginAttemptScript, []string{loginAttemptKeyPrefix + ip}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		if l.logger != nil {
			l.logger.Warn("login rate limiter unavailable, allowing attempt", zap.String("client_ip", ip), zap.Error(err))
		}
		return true, 0
	}

	attempts, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if attempts > int64(l.max) {
		return false, ttl
	}
	return true, 0
}
