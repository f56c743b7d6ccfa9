// Package api exposes the checkers over HTTP
package api

import (
	"context"
	"net/http"
	"time"

	"gostatcheck/app"
	"gostatcheck/internal"
	"gostatcheck/ports"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds request bodies; documents arrive inline as text
const maxBodyBytes = 16 << 20

// Server routes HTTP requests to the statcheck and GRIM services
type Server struct {
	router    *gin.Engine
	statcheck *app.StatcheckService
	grim      *app.GrimService
	runs      ports.RunRepository // nil when storage is disabled
	logger    *internal.Logger
}

// Deps wires a Server
type Deps struct {
	Statcheck *app.StatcheckService
	GRIM      *app.GrimService
	Runs      ports.RunRepository
}

// NewServer builds the router. Call gin.SetMode before this to pick the mode.
func NewServer(deps Deps) *Server {
	s := &Server{
		router:    gin.New(),
		statcheck: deps.Statcheck,
		grim:      deps.GRIM,
		runs:      deps.Runs,
		logger:    internal.DefaultLogger.WithComponent("API"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/statcheck/records", s.handleStatcheckRecords)
		v1.POST("/statcheck/document", s.handleStatcheckDocument)
		v1.POST("/grim/records", s.handleGrimRecords)
		v1.POST("/grim/document", s.handleGrimDocument)

		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
		v1.GET("/runs/:id/export", s.handleExportRun)
	}
}

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
