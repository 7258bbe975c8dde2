package server

import (
	"net/http"

	"whodunit/internal/config"
	"whodunit/internal/content"
	"whodunit/internal/game"
	"whodunit/internal/store"

	"github.com/gin-gonic/gin"
)

type Server struct {
	sessions *game.Sessions
	cfg      config.Config
	limiter  *rateLimiter
}

func New(st store.Store, src content.Source, cfg config.Config) *Server {
	return &Server{
		sessions: game.NewSessions(st, src, cfg),
		cfg:      cfg,
		limiter:  newRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
	}
}

// Handler builds the gin engine. The game API is a single endpoint with
// verb+action dispatch; clients poll GET and post actions, so CORS is open
// for all origins.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())

	router.GET("/api/game", s.handleGetGame)
	router.POST("/api/game", s.handlePostGame)
	router.OPTIONS("/api/game", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.POST("/api/cleanup", s.handleCleanup)
	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Cleanup-Secret")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
