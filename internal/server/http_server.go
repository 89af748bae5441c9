package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	fitlinkgin "github.com/pilab-dev/fitlink/api/gin"
	"github.com/pilab-dev/fitlink/config"
	"github.com/pilab-dev/fitlink/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// HTTPDeps are the handlers and probes the HTTP server is assembled from.
type HTTPDeps struct {
	OAuth     *fitlinkgin.OAuthAPI
	Providers *fitlinkgin.ProvidersAPI
	Gatherer  prometheus.Gatherer
	// HealthCheck reports whether the backing stores are reachable. Nil means
	// always healthy.
	HealthCheck func(ctx context.Context) error
}

// NewRouter creates the gin engine with middleware and every route.
func NewRouter(cfg *config.ServerConfig, appLogger log.Logger, deps HTTPDeps) *gin.Engine {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(accessLog(appLogger))
	router.Use(otelgin.Middleware(cfg.Otel.ServiceName))
	router.Use(fitlinkgin.SecurityHeadersMiddleware())

	router.GET("/healthz", healthHandler(deps.HealthCheck))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := fitlinkgin.UserAuthMiddleware([]byte(cfg.Auth.JWTSecret))
	api := router.Group("/api")
	if deps.OAuth != nil {
		deps.OAuth.RegisterRoutes(api, auth)
	}
	if deps.Providers != nil {
		deps.Providers.RegisterRoutes(api, auth)
	}

	return router
}

// NewHTTPServer wraps NewRouter in an http.Server listening on cfg.HTTPPort.
func NewHTTPServer(cfg *config.ServerConfig, appLogger log.Logger, deps HTTPDeps) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           NewRouter(cfg, appLogger, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// The callback and manual sync wait on provider APIs.
		WriteTimeout: cfg.OAuth.ExchangeTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func accessLog(appLogger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID, ok := c.Get(fitlinkgin.AuthUserIDKey); ok {
			fields["user_id"] = userID
		}

		if len(c.Errors) > 0 {
			appLogger.Error(c.Request.Context(), "HTTP request failed", c.Errors.Last().Err, fields)
			return
		}
		appLogger.Info(c.Request.Context(), "HTTP request", fields)
	}
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
