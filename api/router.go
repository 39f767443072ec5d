package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

type routerConfig struct {
	serviceName    string
	tracerProvider trace.TracerProvider
}

type RouterOption func(*routerConfig)

func WithServiceName(name string) RouterOption {
	return func(c *routerConfig) {
		c.serviceName = name
	}
}

// WithTracerProvider replaces the global provider for request spans.
func WithTracerProvider(provider trace.TracerProvider) RouterOption {
	return func(c *routerConfig) {
		c.tracerProvider = provider
	}
}

func NewRouter(log *slog.Logger, trips *TripHandler, opts ...RouterOption) *gin.Engine {
	cfg := routerConfig{serviceName: "tripsaga"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var otelOpts []otelgin.Option
	if cfg.tracerProvider != nil {
		otelOpts = append(otelOpts, otelgin.WithTracerProvider(cfg.tracerProvider))
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(cfg.serviceName, otelOpts...), AccessLog(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	trips.Register(router.Group("/trips"))
	return router
}
