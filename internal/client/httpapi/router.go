// Package httpapi exposes the local data layer over HTTP/JSON for a web
// front end, with a server-sent-events stream of change notifications.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(dl *services.DataLayer, log logging.Logger) *gin.Engine {
	h := &Handler{dl: dl, log: log.With("module", "httpapi")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/entries", h.ListEntries)
		v1.POST("/entries", h.CreateEntry)
		v1.PATCH("/entries/:id", h.UpdateEntry)
		v1.DELETE("/entries/:id", h.DeleteEntry)

		v1.GET("/profiles", h.ListProfiles)
		v1.POST("/profiles", h.SaveProfile)
		v1.GET("/profiles/active", h.GetActiveProfile)
		v1.PUT("/profiles/active", h.SetActiveProfile)
		v1.DELETE("/profiles/:id", h.DeleteProfile)

		v1.GET("/timers/:kind", h.TimerStatus)
		v1.POST("/timers/:kind/start", h.StartTimer)
		v1.POST("/timers/:kind/stop", h.StopTimer)

		v1.GET("/preferences", h.GetPreferences)
		v1.PUT("/preferences", h.PutPreferences)
		v1.PATCH("/preferences", h.PatchPreferences)

		v1.GET("/summary/daily", h.DailySummary)
		v1.GET("/summary/range", h.RangeSummary)

		v1.GET("/weights", h.ListWeights)
		v1.POST("/weights", h.AddWeight)

		v1.GET("/export/:format", h.Export)
		v1.GET("/events", h.Events)
	}
	return r
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, handler http.Handler, log logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info(shutdownCtx, "http api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
