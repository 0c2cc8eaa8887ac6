// Package http serves quiz sessions as a JSON API.
package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	SessionHandler *SessionHandler
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	api := r.Group("/api/v1")
	if cfg.SessionHandler != nil {
		sessions := api.Group("/sessions")
		sessions.POST("", cfg.SessionHandler.Create)
		sessions.GET("/:id", cfg.SessionHandler.Get)
		sessions.POST("/:id/answers", cfg.SessionHandler.SubmitAnswer)
		sessions.POST("/:id/next", cfg.SessionHandler.Next)
		sessions.POST("/:id/question", cfg.SessionHandler.NewQuestion)
		sessions.PUT("/:id/mode", cfg.SessionHandler.SetMode)
		sessions.DELETE("/:id", cfg.SessionHandler.Delete)
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
