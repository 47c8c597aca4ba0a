package api

import (
	"strconv"
	"time"

	"anovalab/internal"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the analysis endpoints, health check and metrics
func NewRouter(h *Handler, logger *internal.Logger) *gin.Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger.With("http")))

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/anova", h.Analyze)
		v1.GET("/runs", h.ListRuns)
		v1.GET("/runs/:id", h.GetRun)
	}
	return r
}

// requestLogger logs each request and counts it by route and status
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
