package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

const claimKeyPrefix = "ecoquest:claims:"

// claimCounter increments the key and arms its expiry in one round trip, so a
// crash between the two never leaves a counter without a TTL.
var claimCounter = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// ClaimLimiter caps reward claims per identity: the resolved user id, or the
// client IP for guests. It must run after AuthMiddleware. Counters live in
// Redis when a client is given; otherwise, and whenever Redis errors, the
// limiter falls back to in-process token buckets.
type ClaimLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	local map[string]*localBucket
}

type localBucket struct {
	limiter *rate.Limiter
	expires time.Time
}

func NewClaimLimiter(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) *ClaimLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ClaimLimiter{
		rdb:    rdb,
		limit:  max(limit, 1),
		window: window,
		logger: logger.With(zap.String("component", "claim_limiter")),
		local:  make(map[string]*localBucket),
	}
}

// ClaimBucket names the counter a request is charged to.
func ClaimBucket(c *gin.Context) string {
	if userID, ok := GetUserID(c); ok && userID != domain.GuestUserID {
		return "user:" + userID
	}
	return "guest:" + c.ClientIP()
}

func (l *ClaimLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := ClaimBucket(c)

		allowed, retryIn := l.allow(c.Request.Context(), bucket, c)
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(max(1, int((retryIn+time.Second-1)/time.Second))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many claims, slow down"})
			return
		}

		c.Next()
	}
}

func (l *ClaimLimiter) allow(ctx context.Context, bucket string, c *gin.Context) (bool, time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))

	if l.rdb != nil {
		count, ttl, err := l.countRedis(ctx, claimKeyPrefix+bucket)
		if err == nil {
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(l.limit)-count), 10))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			return count <= int64(l.limit), ttl
		}
		l.logger.Warn("redis counter failed, using local bucket", zap.String("bucket", bucket), zap.Error(err))
	}

	b := l.bucketFor(bucket)
	reservation := b.ReserveN(time.Now(), 1)
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		c.Header("X-RateLimit-Remaining", "0")
		return false, delay
	}
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, int(b.Tokens()))))
	return true, 0
}

func (l *ClaimLimiter) countRedis(ctx context.Context, key string) (int64, time.Duration, error) {
	res, err := claimCounter.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	return res[0], ttl, nil
}

// bucketFor returns a token bucket refilling limit tokens per window. Idle
// buckets are dropped after two windows.
func (l *ClaimLimiter) bucketFor(bucket string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, b := range l.local {
		if now.After(b.expires) {
			delete(l.local, key)
		}
	}

	b, ok := l.local[bucket]
	if !ok {
		every := l.window / time.Duration(l.limit)
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(every), l.limit)}
		l.local[bucket] = b
	}
	b.expires = now.Add(2 * l.window)
	return b.limiter
}
