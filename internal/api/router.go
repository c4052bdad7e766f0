// Package api exposes the ledger over HTTP with gin. Every route under
// /api/v1 requires an HS256 bearer token whose user_id claim names the
// calling user.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/service"
)

// NewRouter builds the engine with logging, recovery and the API routes.
func NewRouter(svc *service.Service, secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())

	h := NewHandler(svc)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	private := r.Group("/api/v1")
	private.Use(AuthMiddleware(secret))
	{
		private.GET("/dashboard", h.Dashboard)

		private.GET("/tasks", h.ListTasks)
		private.POST("/tasks", h.CreateTask)
		private.POST("/tasks/:id/start", h.StartTask)
		private.POST("/tasks/:id/complete", h.CompleteTask)

		private.GET("/rewards", h.ListRewards)
		private.POST("/rewards", h.CreateReward)
		private.POST("/rewards/:id/claim", h.ClaimReward)

		private.GET("/sessions", h.SessionHistory)
		private.POST("/sessions", h.StartSession)
		private.POST("/sessions/:id/end", h.EndSession)

		private.GET("/summary", h.Summary)
		private.POST("/moods", h.LogMood)
		private.GET("/ledger", h.Ledger)
	}

	return r
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
