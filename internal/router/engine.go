package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/medli/medli-api/internal/container"
	"github.com/medli/medli-api/internal/interface/middleware"
)

// NewEngine builds the Gin engine with the global middleware chain and every module.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(middleware.Recovery(c.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	r.Use(middleware.SecureHeaders())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))
	r.Use(middleware.BodyLimit(cfg.BodyLimitBytes))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.AccessLog(c.Logger))
	}

	reg := NewRegistry(r)
	reg.Use(middleware.RateLimit(c.Redis, middleware.RateLimitConfig{
		Max:    cfg.APIRateLimit,
		Window: cfg.APIRateWindow,
		Key:    middleware.KeyByIP("api"),
		Allow:  allowFunc(c),
		Logger: c.Logger,
	}))
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// corsConfig allows any origin unless a list is configured.
// Credentials are only allowed for an explicit list.
func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}
