package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockroom/pkg/logger"
)

// NewRouter mounts metrics and health probes.
func NewRouter(health *HealthHandler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	probes := r.Group("/health")
	probes.GET("/live", health.Live)
	probes.GET("/ready", health.Ready)

	return r
}

// requestLogger logs each request at debug level; scrapes and probes are frequent.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithContext(c.Request.Context()).Debugw("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
