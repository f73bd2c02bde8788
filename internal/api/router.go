package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/observability/logger"
	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// NewRouter wires all routes. downloadDir is mounted read-only under
// /downloads so locally published files resolve to real content.
func NewRouter(h *DownloadHandler, cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.GET("/api/health", h.Health)
	r.POST("/api/download-and-upload", h.DownloadAndUpload)
	r.POST("/debug/b2", h.StorageProbe)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Static("/downloads", cfg.Download.Dir)

	return r
}

// requestID tags every request with an id the logger picks up from context.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, uuid.NewString())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Server owns the HTTP listener lifecycle.
type Server struct {
	httpServer *http.Server
	logger     types.Logger
}

// NewServer creates a server bound to cfg.Server.Addr.
func NewServer(handler http.Handler, cfg *config.Config, log types.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		},
		logger: log,
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "HTTP server starting", types.Fields{
		"addr": s.httpServer.Addr,
	})

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "HTTP server stopping", nil)
	return s.httpServer.Shutdown(ctx)
}
