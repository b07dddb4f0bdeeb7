package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/redis"
)

const rateLimitKeyPrefix = "ratelimit:auth:"

var rateLimitScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = now + window
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    end
    return {0, 0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

return {1, limit - count - 1, now + window}
`)

// AuthRateLimiter throttles authentication endpoints per client IP using a
// sliding window in Redis. Unlike ordinary API throttling it fails closed:
// when Redis is unreachable the request is rejected, because these are
// exactly the endpoints an attacker would hammer.
type AuthRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewAuthRateLimiter(client *redis.Client, limit int, window time.Duration) *AuthRateLimiter {
	return &AuthRateLimiter{client: client, limit: limit, window: window}
}

func (rl *AuthRateLimiter) check(ctx context.Context, ip string) (allowed bool, remaining int, resetAt int64, err error) {
	now := time.Now().Unix()
	key := rateLimitKeyPrefix + ip

	result, err := rateLimitScript.Run(ctx, rl.client, []string{key},
		now, int64(rl.window.Seconds()), rl.limit).Int64Slice()
	if err != nil {
		return false, 0, now + int64(rl.window.Seconds()), err
	}
	if len(result) != 3 {
		return false, 0, now + int64(rl.window.Seconds()), nil
	}
	return result[0] == 1, int(result[1]), result[2], nil
}

func (rl *AuthRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		allowed, remaining, resetAt, err := rl.check(r.Context(), ip)
		if err != nil {
			log.Error().Err(err).Str("ip", ip).Msg("auth rate limit check failed, rejecting")
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			retryAfter := resetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("auth rate limit exceeded")
			writeError(w, errors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. RealIP middleware has already
// folded trusted forwarding headers into RemoteAddr by the time we run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
