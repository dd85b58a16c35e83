package app

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/internal/api/handlers"
	"kv-shepherd.io/multiauth/internal/api/middleware"
	"kv-shepherd.io/multiauth/internal/config"
	"kv-shepherd.io/multiauth/internal/pkg/logger"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func newRouter(cfg *config.Config, server *handlers.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(buildCORSConfig(cfg)))

	selector := middleware.ProviderSelector(middleware.SelectorOptions{
		Guard:             cfg.Selector.Guard,
		EnforceValidation: cfg.Selector.EnforceValidation,
	})

	v1 := router.Group("/api/v1")
	{
		health := v1.Group("/health")
		health.GET("/live", server.GetLiveness)
		health.GET("/ready", server.GetReadiness)

		auth := v1.Group("/auth")
		auth.GET("/drivers", server.ListDrivers)
		auth.POST("/provider", selector, server.ResolveProvider)
	}
	return router
}

// buildCORSConfig drops "*" from the allowlist unless the unsafe flag is set.
// Allow-all never sends credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		logger.Warn("CORS allows all origins; credentials disabled")
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		if len(cfg.Server.AllowedOrigins) > 0 {
			logger.Warn("CORS wildcard ignored; falling back to default origins",
				zap.Strings("configured", cfg.Server.AllowedOrigins))
		}
		origins = append(origins, defaultAllowedOrigins...)
	}
	c.AllowOrigins = origins
	return c
}
