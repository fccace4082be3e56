// Package devserver serves the issue and saved-search endpoints from a local
// SQLite database, with the same pagination headers as the hosted API.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/thesavant42/issuenav/internal/db"
)

// Options configures a Server
type Options struct {
	Logger    *log.Logger // Optional
	Token     string      // Optional: required bearer token
	RateLimit float64     // requests per second per client; 0 disables
	Burst     int
}

// Server is the development API server
type Server struct {
	db     *db.DB
	engine *gin.Engine
	logger *log.Logger
}

// New builds the router over an open database
func New(database *db.DB, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(requestLogger(opts.Logger))
	engine.Use(gin.Recovery())
	engine.Use(rateLimit(opts.RateLimit, opts.Burst))

	s := &Server{db: database, engine: engine, logger: opts.Logger}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	org := engine.Group("/api/0/organizations/:org", requireToken(opts.Token))
	org.GET("/issues/", s.listIssues)
	org.PUT("/issues/", s.updateIssues)
	org.GET("/searches/", s.listSearches)
	org.POST("/searches/", s.createSearch)
	org.PUT("/searches/:id/", s.updateSearch)
	org.DELETE("/searches/:id/", s.deleteSearch)
	org.PUT("/pinned-searches/", s.pinSearch)
	org.DELETE("/pinned-searches/", s.unpinSearch)

	return s
}

// Handler returns the HTTP handler, for httptest or custom servers
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("Listening", "addr", addr)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
