// Package server assembles the gin engine that fronts the user directory.
package server

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar is implemented by feature handlers that mount their own routes
type RouteRegistrar interface {
	RegisterRoutes(router gin.IRouter)
}

// HealthReporter reports the health of every registered component by name
type HealthReporter interface {
	RuntimeHealthCheck(ctx context.Context) map[string]error
}

// Options configures the router
type Options struct {
	Logger         *zap.Logger
	Health         HealthReporter
	MaxRequestSize int64
	Routes         []RouteRegistrar
}

// NewRouter builds the engine with the middleware stack, the service endpoints
// and every registered feature route.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()

	router.Use(cors.Default())
	router.Use(RequestID())
	router.Use(RequestLogger(opts.Logger))
	router.Use(gin.Recovery())
	if opts.MaxRequestSize > 0 {
		router.Use(LimitBody(opts.MaxRequestSize))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the DDD-Forum API"})
	})

	if opts.Health != nil {
		router.GET("/health", healthHandler(opts.Health))
	}

	for _, r := range opts.Routes {
		r.RegisterRoutes(router)
	}

	return router
}

func healthHandler(health HealthReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := health.RuntimeHealthCheck(c.Request.Context())

		services := make(gin.H, len(results))
		var failures []string
		for name, err := range results {
			if err != nil {
				services[name] = "unhealthy"
				failures = append(failures, name+": "+err.Error())
				continue
			}
			services[name] = "healthy"
		}

		if len(failures) > 0 {
			sort.Strings(failures)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Format(time.RFC3339),
				"services":  services,
				"error":     strings.Join(failures, "; "),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
	}
}
