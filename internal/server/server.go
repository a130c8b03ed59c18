// Package server exposes the service over HTTP: browsing routes, the
// folder-download task API with SSE progress, and object streaming.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashik5757/Minio-Private-Bucket/internal/config"
	"github.com/ashik5757/Minio-Private-Bucket/internal/download"
	"github.com/ashik5757/Minio-Private-Bucket/internal/logging"
	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/version"
)

// Server wraps the gin engine and the underlying http.Server.
type Server struct {
	cfg   *config.Config
	orch  *download.Orchestrator
	store storage.Store
	log   *logging.Logger
	http  *http.Server
}

// New builds the router and binds all routes.
func New(cfg *config.Config, orch *download.Orchestrator, store storage.Store, logger *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:   cfg,
		orch:  orch,
		store: store,
		log:   logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(engine)

	s.http = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: engine,
		// No write timeout: SSE streams and archive downloads are
		// long-lived by design.
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.GET("/tree", s.tree)
		api.GET("/folder-info/*path", s.folderInfo)

		api.POST("/folder-downloads", s.startFolderDownload)
		api.GET("/folder-downloads/:id", s.taskStatus)
		api.GET("/folder-downloads/:id/events", s.streamProgress)
		api.POST("/folder-downloads/:id/cancel", s.cancelDownload)
		api.GET("/folder-downloads/:id/archive", s.downloadArchive)

		api.GET("/download/*key", s.downloadObject)
		api.GET("/download-folder/*path", s.downloadFolderDirect)
	}
}

// ListenAndServe blocks serving HTTP until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.cfg.ListenAddr).Str("bucket", s.cfg.Bucket).Msg("server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains connections gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"title":   s.cfg.Title,
		"bucket":  s.cfg.Bucket,
		"version": version.Version,
	})
}

// requestLogger logs each request with method, path, status and latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
