package http

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ecoquest/ecoquest-engine/docs"
	"github.com/ecoquest/ecoquest-engine/internal/adapters/handler/http/middleware"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
)

type RateLimit struct {
	Requests int
	Window   time.Duration
}

type RouterDependencies struct {
	DailyHandler   *DailyHandler
	SessionHandler *SessionHandler
	TokenService   *services.TokenService
	// Ping checks the storage backend for /health.
	Ping           func(ctx context.Context) error
	Redis          *redis.Client
	StartTime      time.Time
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string
	// RateLimit caps reward claims per user, or per client IP for guests.
	RateLimit RateLimit
	Logger    *zap.Logger
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", zap.Strings("proxies", deps.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(deps.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		storageStatus := "connected"
		if deps.Ping != nil {
			if err := deps.Ping(c.Request.Context()); err != nil {
				storageStatus = "unreachable"
			}
		}

		statusCode := 200
		if storageStatus == "unreachable" {
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status":  "ok",
			"storage": storageStatus,
			"uptime":  time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		var claimGuards []gin.HandlerFunc
		if deps.RateLimit.Requests > 0 {
			limiter := middleware.NewClaimLimiter(deps.Redis, deps.RateLimit.Requests, deps.RateLimit.Window, logger)
			claimGuards = append(claimGuards, limiter.Handler())
		}

		deps.SessionHandler.RegisterRoutes(apiV1)
		deps.DailyHandler.RegisterRoutes(apiV1, claimGuards...)
	}

	return router
}
