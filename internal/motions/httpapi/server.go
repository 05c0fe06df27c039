package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/debate-motions/internal/motions/config"
	"github.com/yungbote/debate-motions/internal/motions/generator"
	"github.com/yungbote/debate-motions/internal/platform/logger"
)

// Deps are the collaborators the HTTP surface needs. Ready reports whether
// the inference credential is configured.
type Deps struct {
	Log       *logger.Logger
	Generator *generator.Generator
	Ready     func() bool
}

func NewServer(cfg *config.Config, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		WriteTimeout:      0,
	}
}

func NewHandler(cfg *config.Config, deps Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "httpapi")

	r := gin.New()
	r.Use(requestIDMiddleware())
	r.Use(accessLogMiddleware(log))
	r.Use(recoverMiddleware(log))
	if cfg.Otel.Enabled {
		r.Use(otelgin.Middleware(cfg.Otel.ServiceName))
	}
	r.Use(corsMiddleware(cfg.HTTP.CORSOrigins))

	r.GET("/healthz", handleHealthz)
	r.GET("/readyz", handleReadyz(deps.Ready))

	api := r.Group("/api")
	{
		api.POST("/motions", handleGenerateMotions(cfg.HTTP.MaxRequestBytes, deps.Generator))
	}

	return r
}
