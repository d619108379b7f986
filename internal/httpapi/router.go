// Package httpapi serves searches over HTTP: GET /v1/:collection turns the
// request query string into a composer.RawQuery and answers with the
// paginated envelope.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/leandroluk/querykit/composer"
	"github.com/leandroluk/querykit/internal/logger"
	"github.com/leandroluk/querykit/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RateLimit throttles clients by IP. A zero PerMinute disables it.
type RateLimit struct {
	PerMinute int
	Burst     int
}

// Options configures the router.
type Options struct {
	// Searchers maps the :collection path segment to its searcher.
	Searchers map[string]*composer.Searcher
	Health    Pinger
	Metrics   *metrics.Metrics
	// Gatherer backs GET /metrics; nil serves the default registry.
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
	RateLimit RateLimit
}

type handler struct {
	searchers map[string]*composer.Searcher
	health    Pinger
	logger    *slog.Logger
}

// NewRouter builds the gin engine.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default().With("component", "httpapi")
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &handler{searchers: opts.Searchers, health: opts.Health, logger: log}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	if opts.Metrics != nil {
		router.Use(metricsMiddleware(opts.Metrics))
	}

	router.GET("/healthz", h.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	if opts.RateLimit.PerMinute > 0 {
		v1.Use(rateLimitMiddleware(opts.RateLimit.PerMinute, opts.RateLimit.Burst))
	}
	v1.GET("/:collection", h.search)
	return router
}

func (h *handler) search(c *gin.Context) {
	collection := c.Param("collection")
	searcher, ok := h.searchers[collection]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection " + collection})
		return
	}

	ctx := c.Request.Context()
	result, err := searcher.Search(ctx, composer.FromValues(c.Request.URL.Query()))
	if err != nil {
		logger.FromContext(ctx, h.logger).ErrorContext(ctx, "search failed",
			"collection", collection,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestIDMiddleware reuses the client's request ID or assigns a new one,
// echoes it and stores it in the request context.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Writer.Status())
	}
}
