package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

// setupClaimRouter stands in for AuthMiddleware with a header so the limiter
// can be exercised without tokens.
func setupClaimRouter(limiter *ClaimLimiter) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, c.GetHeader(testUserHeader))
	})
	router.POST("/daily/:feature/items/:itemID/complete", limiter.Handler(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func claim(router *gin.Engine, userID, remoteIP, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/daily/tips/items/tip-1/complete", nil)
	req.RemoteAddr = remoteIP + ":40000"
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClaimBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(userID string, set bool) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		c.Request.RemoteAddr = "203.0.113.9:5000"
		if set {
			c.Set(ContextUserIDKey, userID)
		}
		return c
	}

	assert.Equal(t, "user:user-a", ClaimBucket(newCtx("user-a", true)))
	assert.Equal(t, "guest:203.0.113.9", ClaimBucket(newCtx("", true)), "guests are keyed by ip")
	assert.Equal(t, "guest:203.0.113.9", ClaimBucket(newCtx("", false)), "no auth context falls back to ip")
}

func TestClaimLimiter_LocalBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Each user has their own bucket", func(t *testing.T) {
		router := setupClaimRouter(NewClaimLimiter(nil, 2, time.Minute, nil))

		assert.Equal(t, http.StatusOK, claim(router, "user-a", "10.1.1.1", "").Code)
		assert.Equal(t, http.StatusOK, claim(router, "user-a", "10.2.2.2", "").Code)

		w := claim(router, "user-a", "10.3.3.3", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code, "a user switching ip stays in the same bucket")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, claim(router, "user-b", "10.1.1.1", "").Code)
	})

	t.Run("Guests are bucketed by ip", func(t *testing.T) {
		router := setupClaimRouter(NewClaimLimiter(nil, 2, time.Minute, nil))

		assert.Equal(t, http.StatusOK, claim(router, "", "198.51.100.1", "").Code)
		assert.Equal(t, http.StatusOK, claim(router, "", "198.51.100.1", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, claim(router, "", "198.51.100.1", "").Code)

		assert.Equal(t, http.StatusOK, claim(router, "", "198.51.100.2", "").Code)
		assert.Equal(t, http.StatusOK, claim(router, "user-a", "198.51.100.1", "").Code, "signed-in users do not share the guest bucket")
	})

	t.Run("Forwarded header from an untrusted peer is ignored", func(t *testing.T) {
		router := setupClaimRouter(NewClaimLimiter(nil, 1, time.Minute, nil))

		assert.Equal(t, http.StatusOK, claim(router, "", "198.51.100.7", "1.1.1.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, claim(router, "", "198.51.100.7", "2.2.2.2").Code)
	})

	t.Run("Unreachable redis falls back to local buckets", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer rdb.Close()

		router := setupClaimRouter(NewClaimLimiter(rdb, 1, time.Minute, nil))

		assert.Equal(t, http.StatusOK, claim(router, "user-a", "10.1.1.1", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, claim(router, "user-a", "10.1.1.1", "").Code)
	})
}

func setupTestRedis(t *testing.T) *redis.Client {
	_ = godotenv.Load("../../../../../.env")

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       2,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}
	return rdb
}

func TestClaimLimiter_RedisIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()
	keys := []string{
		claimKeyPrefix + "user:user-a",
		claimKeyPrefix + "user:user-b",
		claimKeyPrefix + "guest:198.51.100.1",
	}
	require.NoError(t, rdb.Del(ctx, keys...).Err())
	t.Cleanup(func() { rdb.Del(context.Background(), keys...) })

	router := setupClaimRouter(NewClaimLimiter(rdb, 2, time.Minute, nil))

	t.Run("Per user counter", func(t *testing.T) {
		w := claim(router, "user-a", "10.1.1.1", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, claim(router, "user-a", "10.2.2.2", "").Code)

		w = claim(router, "user-a", "10.3.3.3", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, claim(router, "user-b", "10.1.1.1", "").Code)

		count, err := rdb.Get(ctx, claimKeyPrefix+"user:user-a").Int()
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		ttl, err := rdb.TTL(ctx, claimKeyPrefix+"user:user-a").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0), "counter always carries an expiry")
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("Guest counter by ip", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, claim(router, "", "198.51.100.1", "").Code)
		assert.Equal(t, http.StatusOK, claim(router, "", "198.51.100.1", "9.9.9.9").Code)
		assert.Equal(t, http.StatusTooManyRequests, claim(router, "", "198.51.100.1", "8.8.8.8").Code)

		exists, err := rdb.Exists(ctx, claimKeyPrefix+"guest:198.51.100.1").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})
}
